package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type Wishlist struct {
	UserID   primitive.ObjectID   `bson:"_id" json:"user_id"`
	Products []primitive.ObjectID `bson:"wishlist" json:"products"`
}

func (w *Wishlist) Contains(productID primitive.ObjectID) bool {
	if w == nil {
		return false
	}
	for _, id := range w.Products {
		if id == productID {
			return true
		}
	}
	return false
}

// WishlistView holds wishlist entries resolved against the live catalog.
type WishlistView struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Products []Product          `json:"products"`
}

func NewWishlistView(w *Wishlist, products map[primitive.ObjectID]Product) *WishlistView {
	view := &WishlistView{UserID: w.UserID, Products: make([]Product, 0, len(w.Products))}
	for _, id := range w.Products {
		if p, ok := products[id]; ok {
			view.Products = append(view.Products, p)
		}
	}
	return view
}
