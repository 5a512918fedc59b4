package datastores

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/gatherpics/media-ingest/common/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var s3clients = &sync.Map{}

type s3 struct {
	client        *minio.Client
	core          *minio.Core
	storageClass  string
	bucket        string
	publicBaseUrl string
}

func ResetS3Clients() {
	s3clients = &sync.Map{}
}

func getS3(ds config.DatastoreConfig) (*s3, error) {
	if val, ok := s3clients.Load(ds.Id); ok {
		return val.(*s3), nil
	}

	endpoint := ds.Options["endpoint"]
	bucket := ds.Options["bucketName"]
	accessKeyId := ds.Options["accessKeyId"]
	accessSecret := ds.Options["accessSecret"]
	region := ds.Options["region"]
	storageClass, hasStorageClass := ds.Options["storageClass"]
	useSslStr, hasSsl := ds.Options["ssl"]
	publicBaseUrl := ds.Options["publicBaseUrl"]

	if !hasStorageClass {
		storageClass = "STANDARD"
	}

	useSsl := true
	if hasSsl && useSslStr != "" {
		useSsl, _ = strconv.ParseBool(useSslStr)
	}

	opts := &minio.Options{
		Region: region,
		Secure: useSsl,
		Creds:  credentials.NewStaticV4(accessKeyId, accessSecret, ""),
	}
	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, err
	}
	core, err := minio.NewCore(endpoint, opts)
	if err != nil {
		return nil, err
	}

	s3c := &s3{
		client:        client,
		core:          core,
		storageClass:  storageClass,
		bucket:        bucket,
		publicBaseUrl: publicBaseUrl,
	}
	s3clients.Store(ds.Id, s3c)
	return s3c, nil
}

// PublicUrl derives the browsable URL for an uploaded object.
func PublicUrl(ds config.DatastoreConfig, location string) (string, error) {
	if ds.Type == "s3" {
		s3c, err := getS3(ds)
		if err != nil {
			return "", err
		}
		if s3c.publicBaseUrl != "" {
			return fmt.Sprintf("%s/%s", s3c.publicBaseUrl, location), nil
		}
		return fmt.Sprintf("%s/%s/%s", s3c.client.EndpointURL(), s3c.bucket, location), nil
	} else if ds.Type == "file" {
		base := ds.Options["publicBaseUrl"]
		if base == "" {
			return "", nil
		}
		return fmt.Sprintf("%s/%s", base, location), nil
	}

	return "", nil
}
