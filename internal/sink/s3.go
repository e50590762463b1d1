// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-json"

	"github.com/tomtom215/signalmux/internal/event"
)

// S3Archive batches Log events into a newline-delimited JSON object and
// uploads one object per flush window, playing the role spec.md §1
// assigns to Firehose/Elasticsearch-style bulk log sinks
// (SPEC_FULL.md §4.4 expansion).
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
	batch  [][]byte
}

// NewS3Archive builds an S3 archival sink over an already-configured
// client (callers build the client via aws-sdk-go-v2/config so IAM/role
// credential resolution stays out of this package).
func NewS3Archive(client *s3.Client, bucket, prefix string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, prefix: prefix}
}

func (a *S3Archive) Deliver(e event.Event) error {
	if !e.IsLog() {
		return nil
	}
	line, err := json.Marshal(map[string]any{
		"path":      e.Log.Path,
		"payload":   e.Log.Payload,
		"timestamp": e.Log.Timestamp,
		"tags":      e.Log.Tags.Map(),
	})
	if err != nil {
		return fmt.Errorf("s3 sink: marshal log line: %w", err)
	}
	a.batch = append(a.batch, line)
	return nil
}

func (a *S3Archive) Flush(epoch uint64) error {
	if len(a.batch) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, line := range a.batch {
		buf.Write(line)
		buf.WriteByte('\n')
	}
	a.batch = a.batch[:0]

	key := fmt.Sprintf("%s/epoch-%d.ndjson", a.prefix, epoch)
	_, err := a.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("s3 sink: put object %s: %w", key, err)
	}
	return nil
}
