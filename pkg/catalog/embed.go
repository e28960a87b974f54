package catalog

import (
	"embed"
	"io/fs"
)

//go:embed schemas/*
var embeddedSchemas embed.FS

// EmbeddedFS returns the bundled service schemas for mysql, redis and
// rabbitmq.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedSchemas, "schemas")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadEmbedded loads the bundled service schemas.
func LoadEmbedded() (*Store, error) {
	return LoadFS(EmbeddedFS())
}
