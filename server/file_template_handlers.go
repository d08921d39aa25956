package server

import (
	"embed"
	"html/template"
	"path"
)

//go:embed templates/*
var templateFiles embed.FS

// parsePage parses one page from the embedded templates directory.
func parsePage(name string) (*template.Template, error) {
	return template.ParseFS(templateFiles, path.Join("templates", name))
}
