// Package drive wraps the Google Drive v3 API behind the small surface the
// scanner and pipeline need: OAuth bootstrap, folder listing ordered by
// creation time, and file download into a staging directory.
//
// Credentials follow the installed-app OAuth flow. The refresh token is kept
// in an authorized-user JSON file; when Google reports invalid_grant the
// token file is deleted and the error is classified as a credential failure
// so the whole pass aborts and the operator re-authenticates.
package drive
