package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/client"
)

// OpenContainer returns a Source over the logs of a docker container
// running bitcoind. Like the journal source it does not follow: the stream
// ends at the current end of the container's log.
func OpenContainer(ctx context.Context, name string, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}

	inspect, err := cli.ContainerInspect(ctx, name, client.ContainerInspectOptions{})
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("inspect %s: %w", name, err)
	}

	rc, err := cli.ContainerLogs(ctx, name, client.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("container logs %s: %w", name, err)
	}
	logger.Info("reading container logs", "container", name)

	stream := io.Reader(rc)
	var demux *io.PipeReader
	if !inspect.Container.Config.Tty {
		// Without a TTY the daemon multiplexes stdout/stderr into one
		// framed stream; demux it back into plain lines.
		pr, pw := io.Pipe()
		go func() {
			_, err := stdcopy.StdCopy(pw, pw, rc)
			pw.CloseWithError(err)
		}()
		stream = pr
		demux = pr
	}

	return &containerSource{
		readerSource: newReaderSource(stream, nil),
		cli:          cli,
		logs:         rc,
		demux:        demux,
	}, nil
}

type containerSource struct {
	*readerSource
	cli   *client.Client
	logs  io.ReadCloser
	demux *io.PipeReader
}

func (s *containerSource) Close() error {
	if s.demux != nil {
		s.demux.Close()
	}
	err := s.logs.Close()
	if cerr := s.cli.Close(); err == nil {
		err = cerr
	}
	return err
}
