package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"jamjam-trek/config"
)

// NewS3Client erstellt einen S3-Client für einen S3-kompatiblen Endpoint.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3URL,
				SigningRegion:     cfg.S3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// Archive legt Snapshot-Dateien in einem Bucket ab.
type Archive struct {
	Client  *s3.Client
	Bucket  string
	BaseURL string
	Logger  *zap.Logger
}

// NewArchive erstellt ein Archive für den konfigurierten Bucket.
func NewArchive(client *s3.Client, cfg *config.Config, logger *zap.Logger) *Archive {
	return &Archive{
		Client:  client,
		Bucket:  cfg.S3Bucket,
		BaseURL: strings.TrimRight(cfg.S3URL, "/"),
		Logger:  logger,
	}
}

// Put lädt eine Datei hoch und gibt den Link zurück.
func (a *Archive) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return ObjectURL(a.BaseURL, a.Bucket, key), nil
}

// Rotate behält unter prefix die keep neuesten Dateien und löscht den Rest.
// Einzelne Löschfehler werden geloggt; zurückgegeben wird die Anzahl gelöschter Dateien.
func (a *Archive) Rotate(ctx context.Context, prefix string, keep int) (int, error) {
	log := a.Logger.With(zap.String("prefix", prefix))

	var objects []types.Object
	pages := s3.NewListObjectsV2Paginator(a.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.Bucket),
		Prefix: aws.String(prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("list %s: %w", prefix, err)
		}
		objects = append(objects, page.Contents...)
	}

	stale := StaleObjects(objects, keep)
	if len(stale) == 0 {
		log.Debug("Keine Rotation nötig", zap.Int("objects", len(objects)), zap.Int("keep", keep))
		return 0, nil
	}

	deleted := 0
	for _, obj := range stale {
		log.Info("Lösche alten Snapshot", zap.String("key", aws.ToString(obj.Key)))
		_, err := a.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.Bucket),
			Key:    obj.Key,
		})
		if err != nil {
			log.Error("Löschen fehlgeschlagen", zap.String("key", aws.ToString(obj.Key)), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}

// StaleObjects liefert alle Objekte außer den keep neuesten. Die Eingabe bleibt unverändert.
func StaleObjects(objects []types.Object, keep int) []types.Object {
	if keep < 0 {
		keep = 0
	}
	if len(objects) <= keep {
		return nil
	}
	sorted := append([]types.Object{}, objects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return aws.ToTime(sorted[i].LastModified).After(aws.ToTime(sorted[j].LastModified))
	})
	return sorted[keep:]
}

// ObjectURL baut den pfadbasierten Link zu einem Objekt.
func ObjectURL(baseURL, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), bucket, key)
}
