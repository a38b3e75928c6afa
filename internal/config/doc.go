// Package config loads the network settings the client runs against.
//
// Two networks are built in (sepolia and localhost). A YAML file may add
// networks or override fields of the built-in ones, and command-line flags
// override the selected network last.
package config
