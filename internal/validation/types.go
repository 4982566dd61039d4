package validation

// AddToCartRequest is the payload for POST /cart/items.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"` // defaults to 1
}

// UpdateQuantityRequest is the payload for PATCH /cart/items/:productId.
// Zero or negative removes the line, so no min constraint here.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CustomerRequest carries checkout step-0 fields. Gate-level validation
// (the step advance) re-checks these, so a partial save is allowed to hold
// free text; the validate tags fire only on the explicit submit.
type CustomerRequest struct {
	Name  string `json:"nome" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	CPF   string `json:"cpf" validate:"required,cpf"`
	Phone string `json:"telefone" validate:"required,phone_digits"`
}

// AddressRequest carries checkout step-1 fields.
type AddressRequest struct {
	CEP          string `json:"cep" validate:"required,cep"`
	Street       string `json:"logradouro" validate:"required"`
	Number       string `json:"numero" validate:"required"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro" validate:"required"`
	City         string `json:"cidade" validate:"required"`
	State        string `json:"estado" validate:"omitempty,len=2"`
	Reference    string `json:"referencia"`
}

// SelectShippingRequest picks a quoted option by id.
type SelectShippingRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}

// CepLookupRequest asks for a postal-code lookup.
type CepLookupRequest struct {
	CEP string `json:"cep" validate:"required,cep"`
}

// UpdateOrderStatusRequest is the admin transition payload.
type UpdateOrderStatusRequest struct {
	Expected string `json:"expected_status" validate:"required"`
	New      string `json:"new_status" validate:"required"`
}
