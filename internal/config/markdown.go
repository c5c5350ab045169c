package config

const (
	RendererMmark   = "mmark"
	RendererClassic = "classic"
)
