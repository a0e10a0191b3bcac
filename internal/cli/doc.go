// Package cli turns command-line arguments into configuration for the
// relaygrid server and watch commands. Flags are layered over HCL
// configuration files, and every usage or validation failure is reported as
// an ExitError carrying the process exit code.
package cli
