package acquire

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tetratelabs/wazero"

	"github.com/JeffreyCastellano/cluster-lights-go/errors"
)

const wasmContentType = "application/wasm"

// Load strategy names, in attempt order.
const (
	strategyStreaming = "streaming"
	strategyBuffered  = "buffered"
)

// source is one opened transport stream for an artifact.
type source struct {
	rc          io.ReadCloser
	contentType string
	location    string
}

// openArtifact opens a location over HTTP(S) or the filesystem. For file
// sources the content type is inferred from the extension, mirroring how
// static file servers report it.
func openArtifact(ctx context.Context, opts *Options, location string) (*source, error) {
	if strings.Contains(location, "://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := opts.httpClient().Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		ct := resp.Header.Get("Content-Type")
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			ct = mt
		}
		return &source{rc: resp.Body, contentType: ct, location: location}, nil
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	ct := "application/octet-stream"
	if filepath.Ext(location) == ".wasm" {
		ct = wasmContentType
	}
	return &source{rc: f, contentType: ct, location: location}, nil
}

// streamingCompile compiles directly from the transport stream. The engine
// consumes the bytes as they drain; like its browser counterpart it insists
// the transport report the correct content type, which is what makes this
// the strategy that can fail on otherwise-healthy artifacts.
func streamingCompile(ctx context.Context, rt wazero.Runtime, opts *Options, location string) (wazero.CompiledModule, error) {
	src, err := openArtifact(ctx, opts, location)
	if err != nil {
		return nil, errors.Fetch(strategyStreaming, location, err)
	}
	defer src.rc.Close()

	if src.contentType != wasmContentType {
		return nil, errors.ContentType(location, src.contentType)
	}

	data, err := io.ReadAll(src.rc)
	if err != nil {
		return nil, errors.Fetch(strategyStreaming, location, err)
	}
	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.Compile(strategyStreaming, location, err)
	}
	return compiled, nil
}

// bufferedCompile re-fetches the whole artifact into memory and compiles
// from the buffer. Content type is ignored, which covers transports that
// mis-report it.
func bufferedCompile(ctx context.Context, rt wazero.Runtime, opts *Options, location string) (wazero.CompiledModule, error) {
	src, err := openArtifact(ctx, opts, location)
	if err != nil {
		return nil, errors.Fetch(strategyBuffered, location, err)
	}
	defer src.rc.Close()

	data, err := io.ReadAll(src.rc)
	if err != nil {
		return nil, errors.Fetch(strategyBuffered, location, err)
	}
	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.Compile(strategyBuffered, location, err)
	}
	return compiled, nil
}
