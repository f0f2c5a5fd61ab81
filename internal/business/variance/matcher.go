package variance

import (
	"strings"

	"golang.org/x/text/cases"
)

// SaleMatcher 判断一条销售行是否归属于某个单元
type SaleMatcher interface {
	Match(unit *Unit, line SaleLine) bool
}

// SubstringMatcher 以品牌或产品名的大小写无关子串匹配销售行名称
//
// 菜单名称是自由文本，这只是一个宽松的启发式规则。
type SubstringMatcher struct{}

// Match 品牌或产品名任一命中即归属，空字段不参与匹配
func (SubstringMatcher) Match(unit *Unit, line SaleLine) bool {
	if unit == nil || line.Name == "" {
		return false
	}

	// Caser 有状态，不能跨 goroutine 共享
	fold := cases.Fold()
	name := fold.String(line.Name)

	for _, needle := range []string{unit.Brand, unit.Product} {
		needle = strings.TrimSpace(needle)
		if needle == "" {
			continue
		}
		fold.Reset()
		if strings.Contains(name, fold.String(needle)) {
			return true
		}
	}
	return false
}

// SKUMatcher 按 SKU 精确匹配
type SKUMatcher struct{}

// Match 双方 SKU 均非空且相等时归属
func (SKUMatcher) Match(unit *Unit, line SaleLine) bool {
	if unit == nil || unit.SKU == "" || line.SKU == "" {
		return false
	}
	return strings.EqualFold(unit.SKU, line.SKU)
}

// MatcherByName 按名称选择匹配策略，未知名称回退到子串匹配
func MatcherByName(name string) SaleMatcher {
	switch strings.ToLower(name) {
	case "sku":
		return SKUMatcher{}
	default:
		return SubstringMatcher{}
	}
}
