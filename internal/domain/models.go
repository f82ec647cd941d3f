package domain

// Wire names (JSON keys) match the legacy column names so existing
// clients keep working. Password hashes never leave the service.

type Category struct {
	ID   int    `json:"idCategoria"`
	Name string `json:"nombreCategoria"`
}

type Product struct {
	ID          int     `json:"idProducto"`
	Quantity    int     `json:"cantidad"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio"`
	Unit        string  `json:"unidad"`
	ImagePath   string  `json:"urlImagen"` // relative to the upload root, "" = no image
	CategoryID  int     `json:"idCategoria"`
}

type Purchase struct {
	ID        int `json:"idCompra"`
	UserID    int `json:"idUsuario"`
	ProductID int `json:"idProducto"`
}

type User struct {
	ID           int    `json:"idUsuario"`
	FirstName    string `json:"nombre"`
	LastName     string `json:"apellido"`
	ImagePath    string `json:"urlImagen"` // relative to the upload root, "" = no image
	Document     string `json:"documento"`
	PasswordHash string `json:"-"`
}

type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
	UserID        int    `json:"idUsuario,omitempty"`
}
