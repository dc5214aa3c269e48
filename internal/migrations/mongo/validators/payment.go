package validators

import "go.mongodb.org/mongo-driver/bson"

var PaymentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "booking_id", "amount", "method", "status", "created_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},
			"amount": bson.M{
				"bsonType": "decimal",
			},
			"method": bson.M{
				"enum": bson.A{"credit_card", "debit_card", "boleto", "pix"},
			},
			"status": bson.M{
				"enum": bson.A{"Pending", "Approved", "Declined", "Expired"},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
			"settled_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
