package e2e

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glizzus/sound-stego/internal/config"
	"github.com/glizzus/sound-stego/internal/datalayer"
	"github.com/glizzus/sound-stego/internal/generator"
	"github.com/glizzus/sound-stego/internal/handler"
	"github.com/glizzus/sound-stego/internal/observe"
	"github.com/glizzus/sound-stego/internal/wav"
	"github.com/testcontainers/testcontainers-go"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	minioUsername = "stego"
	minioPassword = "stegopassword"
)

// CounterGenerator yields ids "e2e-1", "e2e-2", ... and is safe for concurrent use.
type CounterGenerator struct {
	counter uint64
}

func (g *CounterGenerator) Next() (string, error) {
	id := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("e2e-%d", id), nil
}

var _ generator.Generator[string] = (*CounterGenerator)(nil)

// CarrierWAV builds a mono 16-bit carrier with a non-trivial waveform.
func CarrierWAV(samples int) []byte {
	audio := &wav.Audio{Channels: 1, SampleRate: 44100, Samples: make([]int16, samples)}
	for i := range audio.Samples {
		audio.Samples[i] = int16((i * 37) % 20000)
	}
	return audio.Bytes()
}

var (
	once           sync.Once
	minioContainer *tcminio.MinioContainer
	endpoint       string
	startErr       error
	wg             sync.WaitGroup
)

// UseMinio signals that the test stores objects in MinIO.
// This will either provision or reuse a MinIO container for the test.
// Do not expect a clean bucket; it is shared across tests.
func UseMinio(t *testing.T) *config.MinioConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() {
		ctx := context.Background()
		minioContainer, startErr = tcminio.Run(
			ctx,
			"minio/minio:RELEASE.2024-01-16T16-07-38Z",
			tcminio.WithUsername(minioUsername),
			tcminio.WithPassword(minioPassword),
		)
		if startErr != nil {
			return
		}
		endpoint, startErr = minioContainer.ConnectionString(ctx)
	})

	if startErr != nil {
		t.Fatalf("failed to start minio container: %v", startErr)
	}
	wg.Add(1)
	t.Cleanup(wg.Done)

	return &config.MinioConfig{
		Endpoint: endpoint,
		Username: minioUsername,
		Password: minioPassword,
		Bucket:   "stego-e2e",
		Region:   "us-east-1",
	}
}

// GetStorage connects to MinIO and makes sure the bucket exists.
func GetStorage(t *testing.T, cfg *config.MinioConfig) *datalayer.MinioStorage {
	t.Helper()
	storage, err := datalayer.NewMinioStorage(cfg)
	if err != nil {
		t.Fatalf("failed to create minio storage: %v", err)
	}
	if err := storage.EnsureBucket(t.Context()); err != nil {
		t.Fatalf("failed to ensure bucket: %v", err)
	}
	return storage
}

// StartServer serves the full API over storage on a local listener.
func StartServer(t *testing.T, storage datalayer.BlobStorage) *httptest.Server {
	t.Helper()
	metrics, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	ids := &CounterGenerator{}
	server := &handler.Server{
		Storage:        storage,
		AudioKeys:      generator.EmbeddedAudioKeys(ids),
		ImageKeys:      generator.ExtractedImageKeys(ids),
		Metrics:        metrics,
		PublicBaseURL:  "/download?filename=",
		MaxUploadBytes: 8 << 20,
	}

	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TerminateMinioForE2E() {
	wg.Wait()
	if minioContainer != nil {
		err := minioContainer.Terminate(context.Background())
		if err != nil {
			fmt.Printf("failed to terminate minio container: %v", err)
		}
	}
}
