package services

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"

	"github.com/763021701/ttt-plus-plus/adaptation/schema"
	image "github.com/763021701/ttt-plus-plus/common/docker"
	"github.com/763021701/ttt-plus-plus/common/errors"
)

const (
	containerBasePath = "/app/mnt"
	containerDataPath = "/app/data"
)

func (e *Executor) handleContainerLifecycle(ctx context.Context, run *schema.Run, runDir string) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		e.logger.Errorf("Failed to create Docker client: %v", err)
		return err
	}
	defer cli.Close()

	img := e.config.Images.ExecutionImageName
	if err := image.PullImage(ctx, cli, img, !e.config.Images.BuildImage); err != nil {
		e.logger.Errorf("Failed to pull image %v: %v", img, err)
		return err
	}

	hostConfig, err := e.generateHostConfig(ctx, cli, runDir)
	if err != nil {
		return err
	}

	containerID, err := e.createContainer(ctx, cli, img, run, hostConfig)
	if err != nil {
		return err
	}
	defer e.cleanupContainer(ctx, cli, containerID)

	if err := cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		e.logger.Errorf("Failed to start container: %v", err)
		return err
	}

	if err := e.waitForContainer(ctx, cli, containerID, run); err != nil {
		return err
	}

	return e.fetchContainerLogs(ctx, cli, containerID, run)
}

func (e *Executor) generateHostConfig(ctx context.Context, cli *client.Client, runDir string) (*container.HostConfig, error) {
	info, err := cli.Info(ctx)
	if err != nil {
		return nil, err
	}

	deviceRequests := make([]container.DeviceRequest, 0)
	runtime := ""
	if _, ok := info.Runtimes["nvidia"]; ok {
		runtime = "nvidia"

		if info.OSType == "linux" {
			deviceRequests = append(deviceRequests, container.DeviceRequest{
				Count:        int(e.config.Quota.GpuCount),
				Capabilities: [][]string{{"gpu"}},
			})
		} else {
			e.logger.Warnf("DeviceRequests is only supported on Linux. Current os type: %v.", info.OSType)
		}
	} else {
		e.logger.Warn("nvidia runtime not found.")
	}

	cpuCount := e.config.Quota.CpuCount
	if cpuCount > int64(info.NCPU) {
		e.logger.Warnf("Limit CPU count to total CPU %v, expected: %v.", info.NCPU, cpuCount)
		cpuCount = int64(info.NCPU)
	}

	memory := e.config.Quota.Memory * 1024 * 1024 * 1024
	if memory > info.MemTotal {
		e.logger.Warnf("Limit memory to total memory %v, expected: %v.", info.MemTotal, memory)
		memory = info.MemTotal
	}

	hostConfig := &container.HostConfig{
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: runDir,
				Target: containerBasePath,
			},
			{
				Type:   mount.TypeBind,
				Source: e.config.DataRoot,
				Target: containerDataPath,
			},
		},
		Runtime: runtime,
		Resources: container.Resources{
			Memory:         memory,
			NanoCPUs:       cpuCount * 1e9,
			DeviceRequests: deviceRequests,
		},
	}
	return hostConfig, nil
}

func (e *Executor) createContainer(ctx context.Context, cli *client.Client, img string, run *schema.Run, hostConfig *container.HostConfig) (string, error) {
	cfg := evaluationConfig(e.config, run, containerBasePath)
	cfg.DataRoot = containerDataPath
	cfg.ResumePath = filepath.Join(containerBasePath, "resume")

	containerConfig := &container.Config{
		Image: img,
		Cmd:   append([]string{"python", "/app/" + scriptFor(run.Method)}, cfg.Args()...),
		Env:   []string{"PYTHONPATH=/app"},
	}

	resp, err := cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "")
	if err != nil {
		e.logger.Errorf("Failed to create container: %v", err)
		return "", err
	}

	e.logger.Infof("Container %s created successfully. Now starting...", resp.ID)
	return resp.ID, nil
}

func (e *Executor) cleanupContainer(ctx context.Context, cli *client.Client, containerID string) {
	err := cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true, RemoveVolumes: true})
	if err != nil {
		e.logger.Errorf("Failed to remove container: %v", err)
	} else {
		e.logger.Infof("Container %s removed successfully\n", containerID)
	}
}

func (e *Executor) waitForContainer(ctx context.Context, cli *client.Client, containerID string, run *schema.Run) error {
	statusCh, errCh := cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			e.logger.Errorf("Error waiting for container: %v", err)
			return err
		}
	case <-statusCh:
		e.logger.Infof("Container %s has stopped\n", containerID)
	case <-ctx.Done():
		if err := cli.ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
			e.logger.Errorf("Error stopping container: %v", err)
		}
		return errors.New(fmt.Sprintf("Run %v was canceled or timed out", run.ID))
	}

	return nil
}

// fetchContainerLogs copies the container output into the run's
// progress.log so result collection sees the same stream in both
// executor modes.
func (e *Executor) fetchContainerLogs(ctx context.Context, cli *client.Client, containerID string, run *schema.Run) error {
	out, err := cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		e.logger.Errorf("Failed to fetch logs: %v", err)
		return err
	}
	defer out.Close()

	logFile, err := e.runLogger.OpenLogFile(run.ID)
	if err != nil {
		return err
	}
	defer logFile.Close()

	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(logFile, scanner.Text()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		e.logger.Errorf("Error reading logs: %v", err)
	}

	return nil
}
