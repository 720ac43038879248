package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ObjectID converts a given string to a Mongo ObjectID, swallowing the error.
// Invalid input yields the nil ID, which no stored document carries, so
// lookups with it simply come back empty
func ObjectID(id string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
