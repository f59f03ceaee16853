package transfer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"vidshare/internal/domain/upload"
)

const defaultPartSize = 5 * 1024 * 1024

// S3Config - параметры бакета для видеофайлов
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
	PartSize        int64
}

// S3Transferer загружает файлы в S3-совместимое хранилище
type S3Transferer struct {
	uploader *manager.Uploader
	log      *slog.Logger
	bucket   string
	baseURL  string
	newKey   func(name string) string
}

func NewS3Transferer(ctx context.Context, cfg S3Config, log *slog.Logger) (*S3Transferer, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3: не задан бакет")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: ошибка загрузки конфигурации AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	partSize := cfg.PartSize
	if partSize < manager.MinUploadPartSize {
		partSize = defaultPartSize
	}

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = partSize
		u.LeavePartsOnError = false
	})

	return &S3Transferer{
		uploader: uploader,
		log:      log,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		newKey:   objectKey,
	}, nil
}

// objectKey - уникальный ключ объекта с исходным именем файла в конце
func objectKey(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "video"
	}
	return uuid.NewString() + "/" + base
}

func (s *S3Transferer) Transfer(ctx context.Context, src upload.Source, progress func(int64)) (string, error) {
	key := s.newKey(src.Name)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        newCountingReader(src.Reader, progress),
		ContentType: aws.String(src.ContentType),
	}
	if src.Size > 0 {
		input.ContentLength = aws.Int64(src.Size)
	}

	s.log.Debug("Загрузка файла в S3", "bucket", s.bucket, "key", key, "size", src.Size)

	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", classifyS3Error(key, err)
	}

	if s.baseURL != "" {
		return s.baseURL + "/" + key, nil
	}
	if out.Location == "" {
		return "", fmt.Errorf("%w: S3 не вернул адрес объекта %s", upload.ErrResponse, key)
	}
	return out.Location, nil
}

func classifyS3Error(key string, err error) error {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return &upload.StatusError{
			StatusCode: respErr.HTTPStatusCode(),
			Body:       fmt.Sprintf("s3 upload %s: %s", key, respErr.Error()),
		}
	}
	return fmt.Errorf("%w: s3 upload %s: %w", upload.ErrTransport, key, err)
}
