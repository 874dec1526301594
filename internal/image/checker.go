// Package image verifies that container images exist in their registry
// before anything is deployed that would pull them.
package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"

	"github.com/starrohan999/opstrace/internal/util/retry"
)

const (
	dockerHubHost     = "docker.io"
	dockerHubRegistry = "registry-1.docker.io"
)

// ErrNotFound is returned when the registry does not know the image.
var ErrNotFound = errors.New("image not found in registry")

// Checker resolves image references against their registry.
type Checker struct {
	// PlainHTTP talks to the registry without TLS.
	PlainHTTP bool
	// HTTPClient overrides the client used for registry requests.
	HTTPClient *http.Client

	Attempts int
	Delay    time.Duration

	logger logr.Logger
}

// NewChecker creates a checker with three attempts per lookup.
func NewChecker(logger logr.Logger) *Checker {
	return &Checker{
		Attempts: 3,
		Delay:    2 * time.Second,
		logger:   logger,
	}
}

// Resolve returns the manifest digest of image. Lookups that fail for
// reasons other than a missing image are retried.
func (c *Checker) Resolve(ctx context.Context, image string) (string, error) {
	ref, err := ParseReference(image)
	if err != nil {
		return "", retry.Fatal(err)
	}

	repo, err := remote.NewRepository(ref.Registry + "/" + ref.Repository)
	if err != nil {
		return "", retry.Fatal(fmt.Errorf("invalid image reference %s: %w", image, err))
	}
	repo.PlainHTTP = c.PlainHTTP
	if ref.Registry == dockerHubHost {
		repo.Reference.Registry = dockerHubRegistry
	}
	client := &auth.Client{Client: http.DefaultClient, Cache: auth.NewCache()}
	if c.HTTPClient != nil {
		client.Client = c.HTTPClient
	}
	repo.Client = client

	var dgst string
	err = retry.Do(ctx, func(ctx context.Context, _ int) error {
		desc, err := repo.Resolve(ctx, ref.Reference)
		if err != nil {
			if errors.Is(err, errdef.ErrNotFound) {
				return retry.Fatal(fmt.Errorf("%w: %s", ErrNotFound, image))
			}
			return fmt.Errorf("failed to resolve image %s: %w", image, err)
		}
		dgst = desc.Digest.String()
		return nil
	},
		retry.WithMaxAttempts(c.Attempts),
		retry.WithFixedDelay(c.Delay),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			c.logger.Info("image lookup failed, retrying", "attempt", attempt, "delay", delay, "error", err.Error())
		}),
	)
	if err != nil {
		return "", err
	}

	c.logger.V(1).Info("image resolved", "image", image, "digest", dgst)
	return dgst, nil
}

// ParseReference parses an image name the way docker does, filling in the
// docker.io registry, the library/ namespace and the latest tag.
func ParseReference(image string) (registry.Reference, error) {
	name := image
	first, _, found := strings.Cut(name, "/")
	if !found || (!strings.ContainsAny(first, ".:") && first != "localhost") {
		if !found {
			name = "library/" + name
		}
		name = dockerHubHost + "/" + name
	}

	ref, err := registry.ParseReference(name)
	if err != nil {
		return registry.Reference{}, fmt.Errorf("invalid image reference %s: %w", image, err)
	}
	if ref.Reference == "" {
		ref.Reference = "latest"
	}
	return ref, nil
}
