package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-date form dob is accepted and rendered in.
const DateLayout = "2006-01-02"

// Profile is the stored person record. It carries the password hash and must
// never be written to a client; use View for that.
type Profile struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id"`
	Name         string               `json:"name" bson:"name"`
	PasswordHash string               `json:"passwordHash" bson:"passwordHash"`
	DOB          time.Time            `json:"dob" bson:"dob"`
	Address      string               `json:"address" bson:"address"`
	Lat          float64              `json:"lat" bson:"lat"`
	Long         float64              `json:"long" bson:"long"`
	Description  string               `json:"description" bson:"description"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	Friends      []primitive.ObjectID `json:"friends" bson:"friends"`
}

// HasFriend reports whether id is already in the friend list.
func (p *Profile) HasFriend(id primitive.ObjectID) bool {
	for _, f := range p.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// View renders the externally visible form of the profile.
func (p *Profile) View() ProfileView {
	friends := make([]string, 0, len(p.Friends))
	for _, f := range p.Friends {
		friends = append(friends, f.Hex())
	}
	return ProfileView{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		DOB:         p.DOB.UTC().Format(DateLayout),
		Address:     p.Address,
		Lat:         p.Lat,
		Long:        p.Long,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UTC(),
		Friends:     friends,
	}
}

// ProfileView is what callers see. It has no password field.
type ProfileView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DOB         string    `json:"dob"`
	Address     string    `json:"address"`
	Lat         float64   `json:"lat"`
	Long        float64   `json:"long"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Friends     []string  `json:"friends"`
}

// ProfilePatch is a validated partial mutation. Nil fields are left untouched;
// a nil Friends slice leaves the friend list untouched.
type ProfilePatch struct {
	Name        *string
	DOB         *time.Time
	Address     *string
	Lat         *float64
	Long        *float64
	Description *string
	Friends     []primitive.ObjectID
}

// IsEmpty reports whether applying the patch would change nothing.
func (p *ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.DOB == nil && p.Address == nil && p.Lat == nil &&
		p.Long == nil && p.Description == nil && p.Friends == nil
}

// Apply writes the non-nil fields of the patch onto prof.
func (p *ProfilePatch) Apply(prof *Profile) {
	if p.Name != nil {
		prof.Name = *p.Name
	}
	if p.DOB != nil {
		prof.DOB = *p.DOB
	}
	if p.Address != nil {
		prof.Address = *p.Address
	}
	if p.Lat != nil {
		prof.Lat = *p.Lat
	}
	if p.Long != nil {
		prof.Long = *p.Long
	}
	if p.Description != nil {
		prof.Description = *p.Description
	}
	if p.Friends != nil {
		prof.Friends = append([]primitive.ObjectID(nil), p.Friends...)
	}
}

// DistanceView is returned by the distance endpoint.
type DistanceView struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Meters float64 `json:"meters"`
}
