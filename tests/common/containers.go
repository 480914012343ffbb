package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	portalBuildOnce  sync.Once
	portalBuildError error
	portalContainer  *PortalContainer
	portalOnce       sync.Once
	portalStartErr   error
)

// PortalContainer wraps a running portfi-portal container. FinBot is
// deliberately unreachable so the offline paths can be exercised.
type PortalContainer struct {
	portal testcontainers.Container
	cancel context.CancelFunc
	url    string
}

// URL returns the base URL of the running portal container.
func (p *PortalContainer) URL() string {
	return p.url
}

// CollectLogs saves container stdout/stderr to dir/portal.log.
func (p *PortalContainer) CollectLogs(dir string) {
	if p == nil || p.portal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reader, err := p.portal.Logs(ctx)
	if err != nil {
		return
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return
	}
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "portal.log"), logs, 0644)
}

// Cleanup terminates the container with a fresh context.
func (p *PortalContainer) Cleanup() {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if p.portal != nil {
		p.portal.Terminate(ctx)
	}
	if p.cancel != nil {
		p.cancel()
	}
}

// buildPortalImage builds the portfi-portal:test image once per test run.
func buildPortalImage() error {
	portalBuildOnce.Do(func() {
		req := testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    FindProjectRoot(),
					Dockerfile: "tests/docker/Dockerfile",
					Repo:       "portfi-portal",
					Tag:        "test",
					KeepImage:  true,
				},
			},
		}

		_, portalBuildError = testcontainers.GenericContainer(context.Background(), req)
		if portalBuildError != nil {
			// Image may have built successfully even if container creation failed
			if strings.Contains(portalBuildError.Error(), "portfi-portal:test") {
				portalBuildError = nil
			}
		}
	})
	return portalBuildError
}

func startTestEnvironment() (*PortalContainer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)

	ctr, err := testcontainers.Run(ctx, "portfi-portal:test",
		testcontainers.WithExposedPorts("8080/tcp"),
		testcontainers.WithEnv(map[string]string{
			"PORTFI_ENV":           "dev",
			"PORTFI_JWT_SECRET":    "ui-test-secret",
			"PORTFI_CHAT_URL":      "http://127.0.0.1:1",
			"PORTFI_ANALYSIS_MODE": "mock",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/api/health").WithPort("8080/tcp").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start portfi-portal: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("get portal host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, "8080/tcp")
	if err != nil {
		ctr.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("get portal mapped port: %w", err)
	}

	return &PortalContainer{
		portal: ctr,
		cancel: cancel,
		url:    fmt.Sprintf("http://%s:%s", host, port.Port()),
	}, nil
}

// StartPortalForTestMain starts the portal container for TestMain.
// Returns (nil, nil) when PORTFI_TEST_URL is set (manual mode).
func StartPortalForTestMain() (*PortalContainer, error) {
	if os.Getenv("PORTFI_TEST_URL") != "" {
		return nil, nil
	}

	portalOnce.Do(func() {
		if err := buildPortalImage(); err != nil {
			portalStartErr = fmt.Errorf("build portal image: %w", err)
			return
		}
		portalContainer, portalStartErr = startTestEnvironment()
	})
	return portalContainer, portalStartErr
}
