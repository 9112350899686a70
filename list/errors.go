package list

import "fmt"

// ItemNotFoundError is an error used to encode when an item ID isn't
// present in the local collection for update and remove operations
type ItemNotFoundError struct {
	ID string
}

// NewItemNotFoundError constructs a new ItemNotFoundError
func NewItemNotFoundError(id string) *ItemNotFoundError {
	return &ItemNotFoundError{
		ID: id,
	}
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item with ID '%s' not found in the list",
		e.ID)
}

// InvalidQuantityError is an error used to encode when a quantity
// value does not parse as an integer
type InvalidQuantityError struct {
	Quantity string
}

// NewInvalidQuantityError constructs a new InvalidQuantityError
func NewInvalidQuantityError(quantity string) *InvalidQuantityError {
	return &InvalidQuantityError{
		Quantity: quantity,
	}
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity '%s' is not a valid integer",
		e.Quantity)
}
