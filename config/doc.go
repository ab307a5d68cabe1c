// Package config discovers and merges promptbox configuration.
//
// Configuration comes from promptbox.toml (or promptbox.yaml) files found
// in the working directory and each of its parents, then from the global
// directories $XDG_CONFIG_HOME/promptbox and ~/.config/promptbox. A nearer
// file wins field by field; farther files only fill what is still unset.
// PROMPTBOX_* environment variables override everything.
package config
