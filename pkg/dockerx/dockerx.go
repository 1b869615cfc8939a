// Package dockerx wraps the Docker Engine API client for the small set of
// daemon interactions devc needs: reachability, container listing for
// status output, and image listing.
package dockerx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/go-units"
)

// Client is a thin wrapper over the Docker Engine API client.
type Client struct {
	api *dockerclient.Client
}

// Connect creates a client from the environment (DOCKER_HOST etc.) with API
// version negotiation, mirroring the docker CLI's own behavior.
func Connect() (*Client, error) {
	api, err := dockerclient.NewClientWithOpts(
		dockerclient.FromEnv,
		dockerclient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	return &Client{api: api}, nil
}

// Ping verifies the daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("docker ping: %w", err)
	}
	return nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.api.Close()
}

// ContainerInfo is one row of `devc status` output.
type ContainerInfo struct {
	Name    string
	Image   string
	State   string
	Status  string
	Created time.Time
}

// Containers lists the containers belonging to the given project. An empty
// project lists every devc-named container.
func (c *Client) Containers(ctx context.Context, project string) ([]ContainerInfo, error) {
	name := "devcontainer"
	if project != "" {
		name = fmt.Sprintf("devcontainer-%s", project)
	}

	// The daemon's name filter is a substring match, so "devcontainer-d"
	// would also hit devcontainer-default. It only narrows the list; the
	// authoritative match is matchesProject below.
	list, err := c.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	infos := make([]ContainerInfo, 0, len(list))
	for _, ctr := range list {
		info := ContainerInfo{
			Image:   ctr.Image,
			State:   ctr.State,
			Status:  ctr.Status,
			Created: time.Unix(ctr.Created, 0),
		}
		if len(ctr.Names) > 0 {
			info.Name = strings.TrimPrefix(ctr.Names[0], "/")
		}
		if !matchesProject(info.Name, project) {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// matchesProject reports whether a container name belongs to the project's
// namespace. Compose names containers <namespace>-<service>-<replica>, so a
// project matches on the exact namespace or on the namespace followed by a
// separator, never on a bare prefix of another project's name.
func matchesProject(name, project string) bool {
	if project == "" {
		return strings.HasPrefix(name, "devcontainer-") || name == "devcontainer"
	}
	ns := "devcontainer-" + project
	return name == ns || strings.HasPrefix(name, ns+"-")
}

// ImageInfo is one row of `devc images` output.
type ImageInfo struct {
	Tag     string
	ID      string
	Size    string
	Created string
}

// Images lists images whose repository matches the environment image name
// (without tag), with human-readable sizes and ages.
func (c *Client) Images(ctx context.Context, imageName string) ([]ImageInfo, error) {
	repo := imageName
	if i := strings.LastIndex(repo, ":"); i > 0 {
		repo = repo[:i]
	}

	list, err := c.api.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", repo)),
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	infos := make([]ImageInfo, 0, len(list))
	for _, img := range list {
		info := ImageInfo{
			ID:      truncateID(img.ID),
			Size:    units.HumanSize(float64(img.Size)),
			Created: units.HumanDuration(time.Since(time.Unix(img.Created, 0))) + " ago",
		}
		if len(img.RepoTags) > 0 {
			info.Tag = img.RepoTags[0]
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func truncateID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
