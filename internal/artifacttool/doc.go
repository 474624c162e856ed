// Package artifacttool provisions and drives the external artifact tool,
// the binary that implements the actual universal package protocol.
//
// The package is split in two halves:
//   - [Updater] ensures a copy of the tool is present locally, downloading
//     and extracting a new copy when the remote archive's entity tag doesn't
//     match anything in the on-disk cache.
//   - [Invoker] launches the tool as a subprocess for a download or publish
//     operation, injecting the credential through the child environment and
//     translating the tool's structured stderr stream into log output and
//     progress updates.
//
// Nothing in here retries: network failures, extraction failures and
// tool-reported errors all surface as plain errors to the caller.
package artifacttool
