package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcrabbitmq "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/zaigie/record2screenshot/internal/domain/entity"
	"github.com/zaigie/record2screenshot/internal/infra/archive"
	"github.com/zaigie/record2screenshot/internal/infra/email"
	"github.com/zaigie/record2screenshot/internal/infra/ffmpeg"
	"github.com/zaigie/record2screenshot/internal/infra/imaging"
	miniostorage "github.com/zaigie/record2screenshot/internal/infra/minio"
	"github.com/zaigie/record2screenshot/internal/infra/postgres"
	"github.com/zaigie/record2screenshot/internal/infra/rabbitmq"
	"github.com/zaigie/record2screenshot/internal/usecase"
	"github.com/zaigie/record2screenshot/pkg/logger"
)

func TestConvertTaskEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Start PostgreSQL container
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("tasks"),
		tcpostgres.WithUsername("r2s_user"),
		tcpostgres.WithPassword("r2s_pass"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	pgConnStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start RabbitMQ container
	rmqContainer, err := tcrabbitmq.Run(ctx,
		"rabbitmq:3.12-management-alpine",
	)
	require.NoError(t, err)
	defer rmqContainer.Terminate(ctx)

	rmqURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err)

	// Start MinIO container
	minioContainer, err := tcminio.Run(ctx,
		"minio/minio:latest",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	defer minioContainer.Terminate(ctx)

	minioEndpoint, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	// Run migrations
	err = postgres.RunMigrations(pgConnStr, "../../migrations")
	require.NoError(t, err)

	// Setup MinIO storage
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:     minioEndpoint,
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		UseSSL:       false,
		UploadBucket: "uploads",
		ResultBucket: "results",
	})
	require.NoError(t, err)
	require.NoError(t, storage.EnsureBuckets(ctx))

	// Upload test video to MinIO. The recording has to actually scroll for
	// the alignment to converge; a static test pattern will not do.
	testVideoPath := filepath.Join("..", "testdata", "scroll.mp4")
	if _, err := os.Stat(testVideoPath); os.IsNotExist(err) {
		t.Skip("test video not found at tests/testdata/scroll.mp4 - generate it with: ffmpeg -f lavfi -i testsrc=duration=1:size=320x1600:rate=1 -vf \"crop=320:480:0:'min(40*t*25,1120)'\" -r 25 -t 1 -c:v libx264 -pix_fmt yuv420p tests/testdata/scroll.mp4")
	}

	minioClient, err := miniogo.New(minioEndpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	taskID := uuid.New()
	videoKey := taskID.String() + "/scroll.mp4"
	_, err = minioClient.FPutObject(ctx, "uploads", videoKey, testVideoPath, miniogo.PutObjectOptions{
		ContentType: "video/mp4",
	})
	require.NoError(t, err)

	// Setup RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(rmqURL)
	require.NoError(t, err)
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, "record2screenshot")
	require.NoError(t, err)

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, "task.convert.dlq")

	// Setup DB pool
	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	defer pool.Close()

	// Setup use case
	log, _ := logger.New("debug")
	repo := postgres.NewTaskRepository(pool)
	decoder := ffmpeg.NewDecoder(log)
	encoder := imaging.NewEncoder(65000, 90, log)
	zipper := archive.NewZipCreator()
	notifier := email.NewSMTPNotifier("localhost", 1025, "test@test.local", log)

	converter := usecase.NewConverter(decoder, encoder, log)
	uc := usecase.NewConvertTaskUseCase(
		repo, storage, converter, zipper,
		statusPub, dlqPub, notifier,
		log,
		usecase.ConvertTaskConfig{
			TempDir:    t.TempDir(),
			MaxRetries: 3,
		},
	)

	// Setup consumer
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         rmqURL,
		Queue:       "task.convert",
		Exchange:    "record2screenshot",
		DLQ:         "task.convert.dlq",
		StatusQueue: "task.status",
		Prefetch:    1,
		WorkerCount: 1,
		BaseDelayMs: 100,
	}, uc.Execute, log)
	require.NoError(t, err)
	defer consumer.Close()

	// Start consumer in background
	consumerCtx, consumerCancel := context.WithCancel(ctx)
	defer consumerCancel()

	go func() {
		consumer.Start(consumerCtx)
	}()

	// Give consumer time to start
	time.Sleep(500 * time.Millisecond)

	// Publish conversion request
	videoInfo, _ := os.Stat(testVideoPath)
	requestMsg := entity.ConversionRequestMessage{
		TaskID:   taskID,
		VideoKey: videoKey,
		FileName: "scroll.mp4",
		FileSize: videoInfo.Size(),
		Params:   entity.DefaultConvertParams(),
	}
	msgBody, err := json.Marshal(requestMsg)
	require.NoError(t, err)

	pubCh, err := rmqConn.Channel()
	require.NoError(t, err)
	err = pubCh.PublishWithContext(ctx,
		"record2screenshot",
		"task.convert",
		false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msgBody,
		},
	)
	require.NoError(t, err)
	pubCh.Close()

	// Wait for status message on task.status queue
	statusCh, err := rmqConn.Channel()
	require.NoError(t, err)
	defer statusCh.Close()

	statusMsgs, err := statusCh.Consume("task.status", "", true, false, false, false, nil)
	require.NoError(t, err)

	var statusMsg entity.ConversionStatusMessage
	select {
	case delivery := <-statusMsgs:
		err = json.Unmarshal(delivery.Body, &statusMsg)
		require.NoError(t, err)
	case <-time.After(2 * time.Minute):
		t.Fatal("timeout waiting for status message")
	}

	// Assert status
	assert.Equal(t, taskID, statusMsg.TaskID)
	assert.Equal(t, entity.TaskStatusCompleted, statusMsg.Status)
	assert.Greater(t, statusMsg.FrameCount, 0)
	assert.Greater(t, statusMsg.CanvasHeight, 480)
	assert.NotEmpty(t, statusMsg.ResultKey)

	// Verify the screenshot exists in MinIO
	obj, err := minioClient.GetObject(ctx, "results", statusMsg.ResultKey, miniogo.GetObjectOptions{})
	require.NoError(t, err)
	stat, err := obj.Stat()
	require.NoError(t, err)
	assert.Greater(t, stat.Size, int64(0))
	assert.True(t, strings.HasSuffix(statusMsg.ResultKey, ".jpg") || strings.HasSuffix(statusMsg.ResultKey, ".zip"))

	// Verify task record in database
	var dbStatus string
	var dbCanvasHeight int
	err = pool.QueryRow(ctx,
		"SELECT status, canvas_height FROM tasks WHERE id=$1", taskID,
	).Scan(&dbStatus, &dbCanvasHeight)
	require.NoError(t, err)
	assert.Equal(t, "completed", dbStatus)
	assert.Equal(t, statusMsg.CanvasHeight, dbCanvasHeight)

	consumerCancel()

	t.Logf("Test passed: %d frames, canvas %d px, result at %s",
		statusMsg.FrameCount, statusMsg.CanvasHeight, statusMsg.ResultKey)
}

func TestConvertTaskMalformedMessage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Start PostgreSQL
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("tasks"),
		tcpostgres.WithUsername("r2s_user"),
		tcpostgres.WithPassword("r2s_pass"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	pgConnStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start RabbitMQ
	rmqContainer, err := tcrabbitmq.Run(ctx,
		"rabbitmq:3.12-management-alpine",
	)
	require.NoError(t, err)
	defer rmqContainer.Terminate(ctx)

	rmqURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err)

	err = postgres.RunMigrations(pgConnStr, "../../migrations")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	defer pool.Close()

	rmqConn, err := amqp.Dial(rmqURL)
	require.NoError(t, err)
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, "record2screenshot")
	require.NoError(t, err)
	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, "task.convert.dlq")

	log, _ := logger.New("debug")
	repo := postgres.NewTaskRepository(pool)
	decoder := ffmpeg.NewDecoder(log)
	encoder := imaging.NewEncoder(65000, 90, log)
	notifier := email.NewSMTPNotifier("localhost", 1025, "test@test.local", log)

	converter := usecase.NewConverter(decoder, encoder, log)
	uc := usecase.NewConvertTaskUseCase(
		repo, nil, converter, archive.NewZipCreator(),
		statusPub, dlqPub, notifier,
		log,
		usecase.ConvertTaskConfig{
			TempDir:    t.TempDir(),
			MaxRetries: 3,
		},
	)

	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         rmqURL,
		Queue:       "task.convert",
		Exchange:    "record2screenshot",
		DLQ:         "task.convert.dlq",
		StatusQueue: "task.status",
		Prefetch:    1,
		WorkerCount: 1,
		BaseDelayMs: 100,
	}, uc.Execute, log)
	require.NoError(t, err)
	defer consumer.Close()

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	defer consumerCancel()
	go func() {
		consumer.Start(consumerCtx)
	}()
	time.Sleep(500 * time.Millisecond)

	// Publish garbage
	pubCh, err := rmqConn.Channel()
	require.NoError(t, err)
	err = pubCh.PublishWithContext(ctx,
		"record2screenshot",
		"task.convert",
		false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        []byte("{this is not json"),
		},
	)
	require.NoError(t, err)
	pubCh.Close()

	// It must land on the DLQ without being requeued forever
	dlqCh, err := rmqConn.Channel()
	require.NoError(t, err)
	defer dlqCh.Close()

	dlqMsgs, err := dlqCh.Consume("task.convert.dlq", "", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case delivery := <-dlqMsgs:
		assert.Equal(t, "{this is not json", string(delivery.Body))
		reason, _ := delivery.Headers["x-dlq-reason"].(string)
		assert.Contains(t, reason, "unmarshal_error")
	case <-time.After(1 * time.Minute):
		t.Fatal("timeout waiting for DLQ message")
	}
}
