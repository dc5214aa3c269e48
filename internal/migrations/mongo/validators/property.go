package validators

import "go.mongodb.org/mongo-driver/bson"

// PropertyValidator only checks the fields the booking service reads. The
// directory owns the rest of the document.
var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner_id", "title", "capacity", "nightly_price"},
		"properties": bson.M{
			"owner_id": bson.M{
				"bsonType": "string",
			},
			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"capacity": bson.M{
				"bsonType": integer,
				"minimum":  1,
			},
			"nightly_price": bson.M{
				"bsonType": bson.A{"decimal", "double", "int", "long", "string"},
			},
		},
	},
}
