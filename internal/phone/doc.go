// Package phone provides offline phone number intelligence.
//
// Analysis runs entirely against libphonenumber metadata bundled with the
// phonenumbers package, so lookups work without network access and reveal
// nothing about the investigation to third parties. Every successfully
// parsed number is appended to the lookup database, including numbers that
// turn out to be invalid.
package phone
