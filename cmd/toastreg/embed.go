package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Applications that ship toastreg alongside their binary overwrite
// embed_config.yaml with their own identity before compiling.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
