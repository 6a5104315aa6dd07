// Package preflight provides readiness checks for the paths and files a
// merge run depends on.
//
// The CLI "kometa-merge doctor" command runs RunAll and renders each Result
// as a row. Individual checks (CheckDirectoryAccess, CheckCore) are also
// usable on their own.
package preflight
