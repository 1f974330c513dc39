package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Address is one saved delivery address. State is the only optional part.
type Address struct {
	Name     string `bson:"name" json:"name"`
	Phone    string `bson:"phone" json:"phone"`
	Door     string `bson:"door" json:"door"`
	Street   string `bson:"street" json:"street"`
	District string `bson:"district" json:"district"`
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	Country  string `bson:"country" json:"country"`
	Pincode  string `bson:"pincode" json:"pincode"`
}

// Profile is the user document as its owner sees it: no credentials and
// none of the cart or wishlist arrays that share the document.
type Profile struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Gender    Gender             `bson:"gender,omitempty" json:"gender,omitempty"`
	DOB       *time.Time         `bson:"dob,omitempty" json:"dob,omitempty"`
	Addresses []Address          `bson:"addresses" json:"addresses"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ProfileUpdate changes only the fields that are set. A nil Addresses keeps
// the saved list, an empty one clears it.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	Gender    *Gender
	DOB       *time.Time
	Addresses []Address
}
