package main

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PartnerProfile is a study-partner offer stored in the partners collection.
// PartnerCount is owned by the send-request flow (atomic $inc); clients never
// set it directly.
type PartnerProfile struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Subject         string             `json:"subject" bson:"subject"`
	Email           string             `json:"email" bson:"email"`
	ExperienceLevel string             `json:"experienceLevel,omitempty" bson:"experienceLevel,omitempty"`
	Rating          float64            `json:"rating" bson:"rating"`
	PartnerCount    int64              `json:"partnerCount" bson:"partnerCount"`
	ProfileImage    string             `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	StudyMode       string             `json:"studyMode,omitempty" bson:"studyMode,omitempty"`
	CreatedAt       time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// ConnectionRequest records one requester asking one partner to connect.
// The partner display fields are a snapshot taken at creation time; later
// partner edits do not propagate here.
type ConnectionRequest struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PartnerID      primitive.ObjectID `json:"partnerId" bson:"partnerId"`
	RequesterEmail string             `json:"requesterEmail" bson:"requesterEmail"`
	PartnerName    string             `json:"partnerName" bson:"partnerName"`
	PartnerImage   string             `json:"partnerImage,omitempty" bson:"partnerImage,omitempty"`
	Subject        string             `json:"subject" bson:"subject"`
	StudyMode      string             `json:"studyMode,omitempty" bson:"studyMode,omitempty"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// Status values the frontend uses today. Status stays an open string —
// PATCH constrains the field name, not the value.
const (
	statusPending  = "pending"
	statusAccepted = "accepted"
	statusDeclined = "declined"
)
