package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"horarios_go/config"
	"horarios_go/database"
	"horarios_go/models"
	"horarios_go/services/scheduler"
	"horarios_go/storage"

	"gorm.io/gorm"
)

// ErrSettingsValidation indicates a user-facing validation error while updating settings
var ErrSettingsValidation = errors.New("settings validation error")

// InstitutionInfo is the identity block printed on exports and shown in the UI.
type InstitutionInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	LogoURL string `json:"logo_url"`
}

// SettingsService reads and writes the school-wide key/value configuration.
type SettingsService struct{}

func NewSettingsService() *SettingsService {
	return &SettingsService{}
}

// getRaw returns the stored JSON for a key, or nil when the key was never set.
func (s *SettingsService) getRaw(key string) (models.JSON, error) {
	var setting models.SchoolSetting
	err := database.DB.Where("`key` = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// setRaw upserts one key.
func (s *SettingsService) setRaw(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var setting models.SchoolSetting
	err = database.DB.Where("`key` = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.DB.Create(&models.SchoolSetting{Key: key, ValueJSON: raw}).Error
	}
	if err != nil {
		return err
	}
	setting.ValueJSON = raw
	return database.DB.Save(&setting).Error
}

// GetTimetablePreferences returns the stored generation preferences, falling
// back to empty preferences when none were saved yet.
func (s *SettingsService) GetTimetablePreferences() (models.TimetablePreferences, error) {
	var prefs models.TimetablePreferences

	raw, err := s.getRaw(models.SettingTimetablePreferences)
	if err != nil {
		return prefs, err
	}
	if raw == nil {
		return prefs, nil
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return prefs, fmt.Errorf("corrupt timetable preferences: %w", err)
	}
	return prefs, nil
}

// UpdateTimetablePreferences validates every lunch slot token against the
// school calendar before persisting.
func (s *SettingsService) UpdateTimetablePreferences(prefs models.TimetablePreferences) error {
	for _, token := range prefs.LunchSlots {
		day, start, ok := splitSlotToken(token)
		if !ok || !scheduler.ValidSlot(day, start) {
			return fmt.Errorf("%w: invalid lunch slot %q", ErrSettingsValidation, token)
		}
	}
	return s.setRaw(models.SettingTimetablePreferences, prefs)
}

// GetInstitutionInfo assembles name, address and logo from their settings keys.
func (s *SettingsService) GetInstitutionInfo() (InstitutionInfo, error) {
	info := InstitutionInfo{}

	fields := []struct {
		key string
		dst *string
	}{
		{models.SettingInstitutionName, &info.Name},
		{models.SettingInstitutionAddress, &info.Address},
		{models.SettingInstitutionLogo, &info.LogoURL},
	}

	for _, f := range fields {
		raw, err := s.getRaw(f.key)
		if err != nil {
			return info, err
		}
		if raw == nil {
			continue
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return info, fmt.Errorf("corrupt setting %s: %w", f.key, err)
		}
	}
	return info, nil
}

// UpdateInstitutionInfo stores name and address. The logo is managed through
// UploadInstitutionLogo.
func (s *SettingsService) UpdateInstitutionInfo(name, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: institution name cannot be empty", ErrSettingsValidation)
	}
	if err := s.setRaw(models.SettingInstitutionName, name); err != nil {
		return err
	}
	return s.setRaw(models.SettingInstitutionAddress, strings.TrimSpace(address))
}

// UploadInstitutionLogo uploads a new logo image to S3, stores its URL and
// deletes the previous logo object if there was one.
func (s *SettingsService) UploadInstitutionLogo(file *multipart.FileHeader, userID uint) (string, error) {
	if file.Size > config.AppConfig.MaxFileSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrSettingsValidation, config.AppConfig.MaxFileSize)
	}

	storageService, err := storage.NewStorageService()
	if err != nil {
		return "", err
	}
	if !storageService.IsImageFile(file.Filename) {
		return "", fmt.Errorf("%w: logo must be one of %s", ErrSettingsValidation, config.AppConfig.AllowedExtensions)
	}

	var previous string
	if raw, err := s.getRaw(models.SettingInstitutionLogo); err == nil && raw != nil {
		_ = json.Unmarshal(raw, &previous)
	}

	url, err := storageService.UploadFile(file, "logos", userID)
	if err != nil {
		return "", err
	}

	if err := s.setRaw(models.SettingInstitutionLogo, url); err != nil {
		return "", err
	}

	if previous != "" {
		// Old logo is unreferenced now; removal failure is not fatal.
		_ = storageService.DeleteFile(previous)
	}

	return url, nil
}

// splitSlotToken splits "Lunes-12:40" into day and start.
func splitSlotToken(token string) (day, start string, ok bool) {
	i := strings.LastIndex(token, "-")
	if i <= 0 || i == len(token)-1 {
		return "", "", false
	}
	return token[:i], token[i+1:], true
}
