package seeders

import (
	"encoding/json"
	"horarios_go/database"
	"horarios_go/models"
	"horarios_go/utils"
	"log"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedUsers()
	SeedSubjects()
	SeedCourseGroups()
	SeedRooms()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers creates the initial admin account
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	hashed, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := models.User{
		Username:            "admin",
		Password:            hashed,
		Role:                "admin",
		Active:              true,
		ForceChangePassword: true,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin user: %v", err)
		return
	}

	log.Println("Users seeded successfully")
}

// SeedSubjects seeds a starter subject catalogue
func SeedSubjects() {
	var count int64
	database.DB.Model(&models.Subject{}).Count(&count)
	if count > 0 {
		log.Println("Subjects already seeded, skipping...")
		return
	}

	subjects := []models.Subject{
		{Name: "Matemática", ColorHex: "#0d9488"},
		{Name: "Lengua y Literatura", ColorHex: "#7c3aed"},
		{Name: "Historia", ColorHex: "#b45309"},
		{Name: "Física", ColorHex: "#1d4ed8"},
		{Name: "Química", ColorHex: "#be123c"},
		{Name: "Educación Física", ColorHex: "#15803d"},
	}

	for _, subject := range subjects {
		if err := database.DB.Create(&subject).Error; err != nil {
			log.Printf("Error seeding subject %s: %v", subject.Name, err)
		}
	}

	log.Println("Subjects seeded successfully")
}

// SeedCourseGroups seeds example course groups
func SeedCourseGroups() {
	var count int64
	database.DB.Model(&models.CourseGroup{}).Count(&count)
	if count > 0 {
		log.Println("Course groups already seeded, skipping...")
		return
	}

	groups := []models.CourseGroup{
		{Year: "1º", Division: "A", StudentCount: 30},
		{Year: "1º", Division: "B", StudentCount: 28},
		{Year: "2º", Division: "A", StudentCount: 32},
	}

	for _, group := range groups {
		if err := database.DB.Create(&group).Error; err != nil {
			log.Printf("Error seeding course group %s: %v", group.DisplayName(), err)
		}
	}

	log.Println("Course groups seeded successfully")
}

// SeedRooms seeds the room catalogue
func SeedRooms() {
	var count int64
	database.DB.Model(&models.Room{}).Count(&count)
	if count > 0 {
		log.Println("Rooms already seeded, skipping...")
		return
	}

	rooms := []models.Room{
		{Name: "Aula 1", Type: "Normal", Capacity: 35},
		{Name: "Aula 2", Type: "Normal", Capacity: 35},
		{Name: "Aula 3", Type: "Normal", Capacity: 30},
		{Name: "Laboratorio", Type: "Laboratorio", Capacity: 24},
		{Name: "Gimnasio", Type: "Gimnasio", Capacity: 60},
	}

	for _, room := range rooms {
		if err := database.DB.Create(&room).Error; err != nil {
			log.Printf("Error seeding room %s: %v", room.Name, err)
		}
	}

	log.Println("Rooms seeded successfully")
}

// SeedDefaultPreferences writes an empty avoid-slot list if none exists, so
// the preferences endpoint always has something to return.
func SeedDefaultPreferences() {
	var setting models.SchoolSetting
	err := database.DB.Where("`key` = ?", models.SettingTimetablePreferences).First(&setting).Error
	if err == nil {
		return
	}

	raw, _ := json.Marshal(models.TimetablePreferences{LunchSlots: []string{}})
	setting = models.SchoolSetting{Key: models.SettingTimetablePreferences, ValueJSON: raw}
	if err := database.DB.Create(&setting).Error; err != nil {
		log.Printf("Error seeding default preferences: %v", err)
	}
}
