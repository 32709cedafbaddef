package create_booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

// productSelection элемент списка товаров из запроса
type productSelection struct {
	ID       *json.Number `json:"id"`
	Price    *json.Number `json:"price"`
	Quantity *json.Number `json:"quantity"`
}

// ParseProducts разбирает список выбранных товаров
//
// Принимает JSON-массив или JSON-строку, внутри которой лежит массив
// (старые клиенты присылают сериализованную строку). Пустое значение,
// null и "" означают отсутствие товаров.
func ParseProducts(raw json.RawMessage) ([]domain.LineItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProductPayload, err)
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			return nil, nil
		}
		raw = json.RawMessage(encoded)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("%w: expected an array: %v", ErrInvalidProductPayload, err)
	}

	items := make([]domain.LineItem, 0, len(elements))
	for i, element := range elements {
		element = bytes.TrimSpace(element)
		if len(element) == 0 || element[0] != '{' {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrInvalidProductPayload, i)
		}

		decoder := json.NewDecoder(bytes.NewReader(element))
		decoder.UseNumber()

		var sel productSelection
		if err := decoder.Decode(&sel); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidProductPayload, i, err)
		}

		if sel.ID == nil || sel.Price == nil {
			return nil, fmt.Errorf("%w: item %d", ErrProductMissingFields, i)
		}

		id, err := wholeNumber(*sel.ID)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: item %d has invalid id", ErrProductMissingFields, i)
		}

		price, err := wholeNumber(*sel.Price)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("%w: item %d has invalid price", ErrInvalidProductPayload, i)
		}
		// нулевая цена считается незаполненной
		if price == 0 {
			return nil, fmt.Errorf("%w: item %d has zero price", ErrProductMissingFields, i)
		}

		quantity := int64(domain.DefaultProductQuantity)
		if sel.Quantity != nil {
			quantity, err = wholeNumber(*sel.Quantity)
			if err != nil || quantity <= 0 || quantity > math.MaxInt32 {
				return nil, fmt.Errorf("%w: item %d has invalid quantity", ErrInvalidProductPayload, i)
			}
		}

		items = append(items, domain.LineItem{
			ProductID: id,
			Price:     price,
			Quantity:  int(quantity),
			Position:  i,
		})
	}

	return items, nil
}

// wholeNumber принимает целые числа, в том числе записанные как 50000.0
func wholeNumber(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, fmt.Errorf("not a whole number: %s", n)
	}
	return int64(f), nil
}

// productIDs уникальные ID товаров в порядке первого появления
func productIDs(items []domain.LineItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ResolvePricing определяет цену услуги для снимка и нормализует товары
//
// Если услуга допускает замену товарами и выбран хотя бы один товар,
// цена услуги равна 0. Иначе берется базовая цена услуги.
// Каждый товар обязан принадлежать услуге (catalog содержит только товары услуги).
// При trustClientPrices=false цена товара берется из каталога.
func ResolvePricing(
	service domain.Service,
	items []domain.LineItem,
	catalog []domain.Product,
	trustClientPrices bool,
) (int64, []domain.LineItem, error) {
	byID := make(map[int64]domain.Product, len(catalog))
	for _, p := range catalog {
		if p.ServiceID == service.ID {
			byID[p.ID] = p
		}
	}

	resolved := make([]domain.LineItem, 0, len(items))
	for i, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return 0, nil, fmt.Errorf("%w: product id=%d, service id=%d", ErrProductNotInService, item.ProductID, service.ID)
		}
		if !trustClientPrices {
			item.Price = product.Price
		}
		item.Position = i
		resolved = append(resolved, item)
	}

	servicePrice := service.BasePrice
	if service.AllowsSubstitution && len(resolved) > 0 {
		servicePrice = 0
	}

	return servicePrice, resolved, nil
}
