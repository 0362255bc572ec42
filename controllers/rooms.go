package controllers

import (
	"strconv"

	"horarios_go/database"
	"horarios_go/middleware"
	"horarios_go/models"
	"horarios_go/utils"

	"github.com/gofiber/fiber/v2"
)

type RoomController struct{}

// GetRooms returns all rooms with pagination
func (rc *RoomController) GetRooms(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset := (page - 1) * limit

	var rooms []models.Room
	var total int64

	query := database.DB.Model(&models.Room{})

	if roomType := c.Query("type"); roomType != "" {
		query = query.Where("type = ?", roomType)
	}

	if minCapacity := c.Query("min_capacity"); minCapacity != "" {
		query = query.Where("capacity >= ?", minCapacity)
	}

	query.Count(&total)

	if err := query.Order("name").Offset(offset).Limit(limit).Find(&rooms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch rooms",
		})
	}

	return c.JSON(fiber.Map{
		"rooms": rooms,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetRoom returns a specific room by ID
func (rc *RoomController) GetRoom(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	var room models.Room
	if err := database.DB.First(&room, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Room not found",
		})
	}

	return c.JSON(fiber.Map{
		"room": room,
	})
}

// CreateRoom creates a new room
func (rc *RoomController) CreateRoom(c *fiber.Ctx) error {
	var room models.Room
	if err := c.BodyParser(&room); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	room.Name = utils.SanitizeString(room.Name)
	if room.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Room name is required",
		})
	}
	if room.Capacity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Capacity must be greater than 0",
		})
	}

	var existing models.Room
	if err := database.DB.Where("name = ?", room.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A room with this name already exists",
		})
	}

	if err := database.DB.Create(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create room",
		})
	}

	middleware.LogActivity(c, "CREATE", "rooms", room.ID, fiber.Map{
		"name": room.Name,
		"type": room.Type,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Room created successfully",
		"room":    room,
	})
}

// UpdateRoom updates an existing room
func (rc *RoomController) UpdateRoom(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	var room models.Room
	if err := database.DB.First(&room, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Room not found",
		})
	}

	var req models.Room
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.Name = utils.SanitizeString(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Room name is required",
		})
	}
	if req.Capacity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Capacity must be greater than 0",
		})
	}

	var duplicate models.Room
	if err := database.DB.Where("name = ? AND id <> ?", req.Name, room.ID).First(&duplicate).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A room with this name already exists",
		})
	}

	room.Name = req.Name
	if req.Type != "" {
		room.Type = req.Type
	}
	room.Capacity = req.Capacity

	if err := database.DB.Save(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update room",
		})
	}

	middleware.LogActivity(c, "UPDATE", "rooms", room.ID, fiber.Map{
		"name": room.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Room updated successfully",
		"room":    room,
	})
}

// DeleteRoom removes a room unless requirements still prefer it
func (rc *RoomController) DeleteRoom(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	var room models.Room
	if err := database.DB.First(&room, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Room not found",
		})
	}

	var inUse int64
	database.DB.Model(&models.Requirement{}).Where("preferred_room_id = ?", room.ID).Count(&inUse)
	if inUse > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Room is preferred by requirements and cannot be deleted",
		})
	}

	if err := database.DB.Model(&models.Assignment{}).
		Where("room_id = ?", room.ID).
		Update("room_id", nil).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to detach room from assignments",
		})
	}

	if err := database.DB.Delete(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete room",
		})
	}

	middleware.LogActivity(c, "DELETE", "rooms", room.ID, fiber.Map{
		"name": room.Name,
	})

	return c.JSON(fiber.Map{"message": "Room deleted successfully"})
}
