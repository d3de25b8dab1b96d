package domain

import "time"

type RegisterTokenRequest struct {
	DeviceUUID string `json:"device_uuid" validate:"required"`
	Token      string `json:"token" validate:"required"`
}

type Device struct {
	DeviceID  string    `json:"id" dynamodbav:"device_id"`
	UUID      string    `json:"uuid" dynamodbav:"device_uuid"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Token     *string   `json:"token" dynamodbav:"token"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}
