package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var IngestedFiles = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "gatherpics_ingested_files_total",
}, []string{"outcome"})
var ValidationRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "gatherpics_validation_rejections_total",
}, []string{"reason"})
var CompressionAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "gatherpics_compression_attempts_total",
}, []string{"result"})
var UploadedBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "gatherpics_uploaded_bytes_total",
}, []string{"transport"})
var UploadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "gatherpics_upload_duration_seconds",
}, []string{"transport"})
var BackupFailures = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "gatherpics_backup_failures_total",
})
var AuditWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "gatherpics_audit_write_failures_total",
})
var S3Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "gatherpics_s3_operations_total",
}, []string{"operation"})

func init() {
	prometheus.MustRegister(IngestedFiles)
	prometheus.MustRegister(ValidationRejections)
	prometheus.MustRegister(CompressionAttempts)
	prometheus.MustRegister(UploadedBytes)
	prometheus.MustRegister(UploadDuration)
	prometheus.MustRegister(BackupFailures)
	prometheus.MustRegister(AuditWriteFailures)
	prometheus.MustRegister(S3Operations)
}
