// Package config resolves the build settings for a gadget project. Settings
// come from gadgetc.yaml in the project directory, overridden by GADGETC_*
// environment variables, and are returned as an immutable Build value that
// is passed explicitly to every build phase.
package config
