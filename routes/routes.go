package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ixtiyorSaitov/e-commerce-admin/controllers"
)

// Controllers groups every handler set the router mounts.
type Controllers struct {
	Category     *controllers.CategoryController
	Product      *controllers.ProductController
	User         *controllers.UserController
	Notification *controllers.NotificationController
	Promocode    *controllers.PromocodeController
}

// RegisterRoutes mounts the API. Catalog reads and promo quotes are public;
// everything else runs behind adminAuth.
func RegisterRoutes(r gin.IRouter, ctrl Controllers, adminAuth gin.HandlerFunc) {
	category := r.Group("/category")
	{
		category.GET("/get-all", ctrl.Category.GetCategories)
		category.GET("/get-category/:id", ctrl.Category.GetCategory)

		admin := category.Group("", adminAuth)
		admin.POST("/create-category", ctrl.Category.CreateCategory)
		admin.PUT("/edit-category/:id", ctrl.Category.EditCategory)
		admin.DELETE("/delete-category/:id", ctrl.Category.DeleteCategory)
	}

	product := r.Group("/product")
	{
		product.GET("/get-product", ctrl.Product.GetProducts)
		product.GET("/get-product/:id", ctrl.Product.GetProductByID)

		admin := product.Group("", adminAuth)
		admin.POST("/create-product", ctrl.Product.CreateProduct)
		admin.PUT("/edit-product/:id", ctrl.Product.EditProduct)
		admin.DELETE("/delete-product/:id", ctrl.Product.DeleteProduct)
	}

	user := r.Group("/user", adminAuth)
	{
		user.GET("/get-all", ctrl.User.GetUsers)
		user.GET("/get-user/:id", ctrl.User.GetUser)
		user.PUT("/edit-user/:id", ctrl.User.EditUser)
		user.DELETE("/delete-user/:id", ctrl.User.DeleteUser)
	}

	notification := r.Group("/notification", adminAuth)
	{
		notification.POST("/create-notification", ctrl.Notification.CreateNotification)
		notification.GET("/get-all", ctrl.Notification.GetNotifications)
		notification.DELETE("/delete-notification/:id", ctrl.Notification.DeleteNotification)
	}

	promocode := r.Group("/promocode")
	{
		promocode.POST("/quote", ctrl.Promocode.Quote)

		admin := promocode.Group("", adminAuth)
		admin.POST("/create-promocode", ctrl.Promocode.CreatePromocode)
		admin.GET("/get-all", ctrl.Promocode.GetPromocodes)
		admin.DELETE("/delete-promocode/:id", ctrl.Promocode.DeletePromocode)
	}

	r.GET("/admin/me", adminAuth, controllers.Me)
}
