package migrations

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jcorner/storefront/pkg/migration"
)

func init() {
	migration.Register("20260101000000_users_email_unique",
		unique("users", "email_unique", bson.D{{Key: "email", Value: 1}}))
	migration.Register("20260101000001_products_name_unique",
		unique("products", "name_unique", bson.D{{Key: "name", Value: 1}}))
	migration.Register("20260101000002_products_catalog",
		index("products", "active_category", bson.D{{Key: "isActive", Value: 1}, {Key: "productCategory", Value: 1}}))
	migration.Register("20260101000003_carts_user_unique",
		unique("carts", "user_unique", bson.D{{Key: "userId", Value: 1}}))
	migration.Register("20260101000004_orders_by_user",
		index("orders", "user_ordered_on", bson.D{{Key: "userId", Value: 1}, {Key: "orderedOn", Value: -1}}))
	migration.Register("20260101000005_orders_by_status",
		index("orders", "status_ordered_on", bson.D{{Key: "status", Value: 1}, {Key: "orderedOn", Value: -1}}))
}
