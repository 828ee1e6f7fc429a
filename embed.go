package spacetraveling

import "embed"

// EmbeddedAssets contains the built-in static assets:
// style.css, loadmore.js, favicon.svg
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
