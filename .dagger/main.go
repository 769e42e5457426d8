// Textstream CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/textstream/internal/dagger"
)

// Textstream is the main module for the textstream CI/CD pipeline
type Textstream struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Textstream CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp"]
	source *dagger.Directory,
) *Textstream {
	return &Textstream{
		Source: source,
	}
}

// goContainer returns a Go container with the module caches and the project
// source mounted. textstream is pure Go so CGO stays off.
func (t *Textstream) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", t.Source)
}

// Test runs the textstream unit tests via "go test"
func (t *Textstream) Test(ctx context.Context) (string, error) {
	return t.goContainer().
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}

// TestPipeline runs only the streaming pipeline packages, which have no
// network dependencies.
func (t *Textstream) TestPipeline(ctx context.Context) (string, error) {
	return t.goContainer().
		WithExec([]string{
			"go", "test",
			"./pkg/utf8stream/...",
			"./pkg/sse/...",
			"./pkg/extract/...",
			"./pkg/transform/...",
			"./pkg/sentinel/...",
			"./pkg/stream/...",
		}).
		Stdout(ctx)
}
