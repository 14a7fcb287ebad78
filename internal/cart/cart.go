package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem представляет позицию корзины: товар, количество и цена на момент
// добавления. Цена может быть уже уменьшена акцией, тогда OriginalPrice
// хранит цену до скидки.
type LineItem struct {
	ProductID     uuid.UUID        `json:"product_id"`
	Title         string           `json:"title"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Image         string           `json:"image"`
	Quantity      int              `json:"quantity"`
	InStock       bool             `json:"in_stock"`
}

// Cart хранит позиции корзины одной сессии. Все операции синхронные и
// потокобезопасные; сохранение во внешнее хранилище выполняет отдельный
// адаптер после мутации.
type Cart struct {
	mu    sync.Mutex
	items []LineItem
}

// New создает пустую корзину.
func New() *Cart {
	return &Cart{}
}

// AddItem добавляет позицию. Если товар уже в корзине — увеличивает его
// количество, иначе добавляет новую позицию. Количество меньше 1
// трактуется как 1.
func (c *Cart) AddItem(item LineItem, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += quantity
			return
		}
	}

	item.Quantity = quantity
	c.items = append(c.items, item)
}

// RemoveItem удаляет позицию по товару. Отсутствующий товар игнорируется.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// SetQuantity задает количество для позиции. Количество меньше 1
// эквивалентно удалению. Отсутствующий товар игнорируется.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) {
	if quantity < 1 {
		c.RemoveItem(productID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Subtotal возвращает сумму цена*количество по всем позициям.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount возвращает суммарное количество единиц товара (не число позиций).
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Items возвращает копию позиций корзины.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// Clear удаляет все позиции.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Replace целиком заменяет содержимое корзины (используется при загрузке
// сохраненной сессии).
func (c *Cart) Replace(items []LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]LineItem, len(items))
	copy(c.items, items)
}
