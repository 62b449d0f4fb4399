// Package image manages the execution image the container executor runs
// adaptation scripts in.
package image

import (
	"context"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"

	"github.com/763021701/ttt-plus-plus/common/errors"
)

func ImageExists(ctx context.Context, cli *client.Client, imageName string) (bool, error) {
	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, errors.Wrap(err, "list images")
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

// ImageBuild builds buildDirectory, which must contain a Dockerfile, and
// tags the result.
func ImageBuild(ctx context.Context, cli *client.Client, buildDirectory, tag string) error {
	tar, err := archive.TarWithOptions(buildDirectory, &archive.TarOptions{})
	if err != nil {
		return errors.Wrap(err, "tar build directory")
	}
	defer tar.Close()

	resp, err := cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Dockerfile: "Dockerfile",
		Tags:       []string{tag},
		Remove:     true,
	})
	if err != nil {
		return errors.Wrap(err, "build image")
	}
	defer resp.Body.Close()

	// the daemon streams build progress; the build aborts if the stream
	// is not drained
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return errors.Wrap(err, "read build output")
	}

	return nil
}

// PullImage pulls imageName unless pull is false or the image is already
// present locally.
func PullImage(ctx context.Context, cli *client.Client, imageName string, pull bool) error {
	if !pull {
		return nil
	}

	exists, err := ImageExists(ctx, cli, imageName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	reader, err := cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return errors.Wrapf(err, "pull image %s", imageName)
	}
	defer reader.Close()

	_, err = io.Copy(io.Discard, reader)
	return err
}
