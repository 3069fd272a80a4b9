package items

import (
	"testing"

	"github.com/tenderdesk/parser/pkg/dom"
	"github.com/tenderdesk/parser/pkg/models"
)

func TestFromRows(t *testing.T) {
	cols := Columns{Name: 3, NameFallback: 1, Quantity: 4}

	testCases := []struct {
		name     string
		html     string
		expected []models.ProcurementItem
	}{
		{
			name: "name in preferred column",
			html: `<table>
				<tr class="c2"><td>1</td><td></td><td>шт</td><td>Болт М8</td><td>100</td></tr>
			</table>`,
			expected: []models.ProcurementItem{{Name: "Болт М8", Quantity: 100}},
		},
		{
			name: "empty preferred column falls back",
			html: `<table>
				<tr class="c2"><td>1</td><td>Редуктор 5А028</td><td>шт</td><td></td><td>2,5</td></tr>
			</table>`,
			expected: []models.ProcurementItem{{Name: "Редуктор 5А028", Quantity: 2.5}},
		},
		{
			name: "short row skipped",
			html: `<table>
				<tr class="c2"><td>итого</td><td>3</td></tr>
				<tr class="c2"><td>1</td><td></td><td>шт</td><td>Гайка</td><td>10</td></tr>
			</table>`,
			expected: []models.ProcurementItem{{Name: "Гайка", Quantity: 10}},
		},
		{
			name: "zero quantity dropped",
			html: `<table>
				<tr class="c2"><td>1</td><td></td><td>шт</td><td>Шайба</td><td>0</td></tr>
			</table>`,
			expected: nil,
		},
		{
			name: "non-numeric quantity dropped",
			html: `<table>
				<tr class="c2"><td>1</td><td></td><td>шт</td><td>Шайба</td><td>по запросу</td></tr>
			</table>`,
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := dom.Parse(tc.html)
			got := FromRows(doc.Find(`tr[class*="c2"]`), cols)
			assertItems(t, got, tc.expected)
		})
	}
}

func TestFromHeaderTables(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected []models.ProcurementItem
	}{
		{
			name: "header row with name and quantity",
			html: `<table>
				<tr><th>№</th><th>Наименование</th><th>Ед.</th><th>Количество</th></tr>
				<tr><td>1</td><td>Труба стальная</td><td>м</td><td>120</td></tr>
				<tr><td>2</td><td>Отвод 90°</td><td>шт</td><td>14</td></tr>
			</table>`,
			expected: []models.ProcurementItem{
				{Name: "Труба стальная", Quantity: 120},
				{Name: "Отвод 90°", Quantity: 14},
			},
		},
		{
			name: "positional header preferred over generic name column",
			html: `<table>
				<tr><th>Наименование организации</th><th>Наименование позиции</th><th>Кол-во</th></tr>
				<tr><td>ООО Ромашка</td><td>Кабель ВВГ</td><td>500</td></tr>
			</table>`,
			expected: []models.ProcurementItem{{Name: "Кабель ВВГ", Quantity: 500}},
		},
		{
			name: "first matching table wins",
			html: `<table>
				<tr><th>Название</th><th>Количество</th></tr>
				<tr><td>Первый товар</td><td>1</td></tr>
			</table>
			<table>
				<tr><th>Название</th><th>Количество</th></tr>
				<tr><td>Второй товар</td><td>2</td></tr>
			</table>`,
			expected: []models.ProcurementItem{{Name: "Первый товар", Quantity: 1}},
		},
		{
			name: "barren header followed by a real one in the same table",
			html: `<table>
				<tr><th>Сводка</th><th>Наименование</th><th>Ед.</th><th>Количество</th></tr>
				<tr><td>Итого</td><td>два лота</td></tr>
				<tr><th>Наименование позиции</th><th>Количество</th></tr>
				<tr><td>Кабель ВВГ</td><td>500</td></tr>
			</table>`,
			expected: []models.ProcurementItem{{Name: "Кабель ВВГ", Quantity: 500}},
		},
		{
			name: "table without quantity header ignored",
			html: `<table>
				<tr><th>Наименование</th><th>Адрес</th></tr>
				<tr><td>ООО Ромашка</td><td>Москва</td></tr>
			</table>`,
			expected: nil,
		},
		{
			name: "comma decimal separator",
			html: `<table>
				<tr><th>Наименование</th><th>Кол-во</th></tr>
				<tr><td>Масло моторное</td><td>2,5 т</td></tr>
			</table>`,
			expected: []models.ProcurementItem{{Name: "Масло моторное", Quantity: 2.5}},
		},
		{
			name:     "no tables",
			html:     `<p>страница без таблиц</p>`,
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromHeaderTables(dom.Parse(tc.html))
			assertItems(t, got, tc.expected)
		})
	}
}

func TestCleanQuantity(t *testing.T) {
	testCases := []struct {
		raw      string
		expected float64
	}{
		{"100", 100},
		{"2,5", 2.5},
		{"2.5", 2.5},
		{" 1 200 шт. ", 1200.0},
		{"по запросу", 0},
		{"", 0},
		{"1,2,3", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			if got := CleanQuantity(tc.raw); got != tc.expected {
				t.Errorf("CleanQuantity(%q) = %v, expected %v", tc.raw, got, tc.expected)
			}
		})
	}
}

func assertItems(t *testing.T, got, expected []models.ProcurementItem) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("got %d items %v, expected %d", len(got), got, len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("item %d = %+v, expected %+v", i, got[i], expected[i])
		}
	}
}
