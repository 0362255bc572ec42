package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"horarios_go/config"
	"horarios_go/database"
	"horarios_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrArchiveNotFound = errors.New("archive not found")

// ArchiveService flushes cached activity logs to the database and uploads
// periodic timetable snapshots to S3.
type ArchiveService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
	export      *ExportService
	cron        *cron.Cron
}

// NewArchiveService creates a new service instance
func NewArchiveService() *ArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; S3 operations will fail until configured")
	}

	return &ArchiveService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
		export:      NewExportService(),
	}
}

// FlushCachedLogsToDatabase moves logs from the Redis write-behind queue to
// the database.
func (as *ArchiveService) FlushCachedLogsToDatabase() error {
	if as.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	cutoffTime := time.Now().Add(-24 * time.Hour)

	expiredLogs, err := as.redisClient.ZRangeByScore(ctx, "logs:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", cutoffTime.Unix()),
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to get expired logs: %v", err)
	}

	var processedCount int
	var errorCount int

	for _, logKey := range expiredLogs {
		logData, err := as.redisClient.Get(ctx, logKey).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).Errorf("Failed to get log data for key: %s", logKey)
				errorCount++
			}
			continue
		}

		var activityLog models.ActivityLog
		if err := json.Unmarshal([]byte(logData), &activityLog); err != nil {
			logrus.WithError(err).Errorf("Failed to unmarshal log data for key: %s", logKey)
			errorCount++
			continue
		}

		if err := database.DB.Create(&activityLog).Error; err != nil {
			logrus.WithError(err).Errorf("Failed to save log to database: %v", activityLog)
			errorCount++
			continue
		}

		pipeline := as.redisClient.Pipeline()
		pipeline.Del(ctx, logKey)
		pipeline.ZRem(ctx, "logs:queue", logKey)
		if _, err = pipeline.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to remove log from cache: %s", logKey)
		}

		processedCount++
	}

	if processedCount > 0 || errorCount > 0 {
		logrus.Infof("Flushed %d logs to database, %d errors", processedCount, errorCount)
	}
	return nil
}

// SnapshotTimetable exports the current timetable workbook and uploads it
// to S3, recording the result as a TimetableArchive row. An empty timetable
// is skipped silently so an idle school does not accumulate empty files.
func (as *ArchiveService) SnapshotTimetable() (*models.TimetableArchive, error) {
	buf, filename, err := as.export.ExportTimetable()
	if err != nil {
		if errors.Is(err, ErrExportEmpty) {
			logrus.Info("No assignments to snapshot, skipping archive")
			return nil, nil
		}
		return nil, err
	}

	var groupCount int64
	if err := database.DB.Model(&models.CourseGroup{}).Count(&groupCount).Error; err != nil {
		return nil, err
	}
	var assignmentCount int64
	if err := database.DB.Model(&models.Assignment{}).Count(&assignmentCount).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	s3Key := fmt.Sprintf("snapshots/%d/%02d/%s", now.Year(), now.Month(), filename)

	archive := models.TimetableArchive{
		FileName:        filename,
		S3Key:           s3Key,
		GroupCount:      int(groupCount),
		AssignmentCount: int(assignmentCount),
		FileSize:        int64(buf.Len()),
		Status:          "pending",
	}
	if err := database.DB.Create(&archive).Error; err != nil {
		return nil, fmt.Errorf("failed to record archive: %v", err)
	}

	if err := as.uploadToS3(s3Key, buf); err != nil {
		archive.Status = "failed"
		archive.Error = err.Error()
		database.DB.Save(&archive)
		return &archive, fmt.Errorf("failed to upload snapshot to S3: %v", err)
	}

	archive.Status = "completed"
	if err := database.DB.Save(&archive).Error; err != nil {
		return &archive, err
	}

	logrus.WithFields(logrus.Fields{
		"s3_key":      s3Key,
		"assignments": assignmentCount,
	}).Info("Timetable snapshot uploaded")
	return &archive, nil
}

// uploadToS3 uploads data to the configured bucket
func (as *ArchiveService) uploadToS3(key string, data *bytes.Buffer) error {
	if as.awsConfig.Region == "" {
		return fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(as.awsConfig)
	bucketName := config.AppConfig.S3BucketName

	_, err := s3Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      &bucketName,
		Key:         &key,
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
	})

	return err
}

// downloadFromS3 downloads a key from S3
func (as *ArchiveService) downloadFromS3(key string) (io.ReadCloser, error) {
	if as.awsConfig.Region == "" {
		return nil, fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(as.awsConfig)
	bucketName := config.AppConfig.S3BucketName

	result, err := s3Client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: &bucketName,
		Key:    &key,
	})

	if err != nil {
		return nil, err
	}

	return result.Body, nil
}

// ListSnapshots retrieves the recorded timetable snapshots, newest first.
func (as *ArchiveService) ListSnapshots() ([]models.TimetableArchive, error) {
	var archives []models.TimetableArchive

	err := database.DB.
		Order("created_at DESC").
		Find(&archives).Error

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve snapshots: %v", err)
	}

	return archives, nil
}

// DownloadSnapshot streams one snapshot back from S3.
func (as *ArchiveService) DownloadSnapshot(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.TimetableArchive

	err := database.DB.First(&archive, archiveID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrArchiveNotFound
		}
		return nil, "", fmt.Errorf("failed to retrieve archive: %v", err)
	}

	reader, err := as.downloadFromS3(archive.S3Key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download snapshot from S3: %v", err)
	}

	return reader, archive.FileName, nil
}

// StartMaintenanceScheduler flushes the log queue hourly and snapshots the
// timetable on the configured cron expression.
func (as *ArchiveService) StartMaintenanceScheduler() {
	go func() {
		if err := as.FlushCachedLogsToDatabase(); err != nil {
			logrus.WithError(err).Warn("initial FlushCachedLogsToDatabase failed")
		}

		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := as.FlushCachedLogsToDatabase(); err != nil {
				logrus.WithError(err).Warn("periodic FlushCachedLogsToDatabase failed")
			}
		}
	}()

	as.cron = cron.New()
	if _, err := as.cron.AddFunc(config.AppConfig.SnapshotCron, func() {
		if _, err := as.SnapshotTimetable(); err != nil {
			logrus.WithError(err).Warn("scheduled timetable snapshot failed")
		}
	}); err != nil {
		logrus.WithError(err).Error("Invalid snapshot cron expression")
		return
	}
	as.cron.Start()
}
