package repository

const DefaultKeyPrefix = "traffic_care_pro_v1_stable"

// DocumentKeys names the three documents kept under one namespace prefix.
type DocumentKeys struct {
	Vehicles string
	Schedule string
	Logs     string
}

func KeysFor(prefix string) DocumentKeys {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return DocumentKeys{
		Vehicles: prefix + "_vehicles",
		Schedule: prefix + "_schedule",
		Logs:     prefix + "_logs",
	}
}
