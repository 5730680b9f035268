// Package notify delivers violation report emails.
//
// The check runner depends only on Notifier. EmailJS is the production
// transport; it reads credentials on every send so settings changes take
// effect without a restart, and reports ErrNotConfigured instead of failing
// when any credential is missing.
package notify
