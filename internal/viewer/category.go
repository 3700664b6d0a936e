package viewer

import "strings"

// Category：图层分类；每个分类对应一个可切换的图层组与一个界面指示器
type Category string

const (
	Castle   Category = "castle"
	City     Category = "city"
	Town     Category = "town"
	Ruin     Category = "ruin"
	Landmark Category = "landmark"
	Boundary Category = "boundary"
)

// 点要素分类的加载顺序；检索语料的顺序依赖于此
var PointCategories = []Category{Castle, City, Town, Ruin, Landmark}

// 加载完成后默认可见的分类，其余保持隐藏
var DefaultVisible = []Category{City, Town, Boundary}

// AllCategories：全部分类，点要素在前、边界在后
func AllCategories() []Category {
	out := make([]Category, 0, len(PointCategories)+1)
	out = append(out, PointCategories...)
	return append(out, Boundary)
}

// ToggleID：界面指示器的约定标识 "{category}-toggle"
func (c Category) ToggleID() string { return string(c) + "-toggle" }

// ParseCategory：大小写不敏感；兼容复数形式 "boundaries"
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "boundaries" {
		s = string(Boundary)
	}
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Icon：点标记图标
type Icon struct {
	URL    string
	Width  int
	Height int
}

const DefaultIconBaseURL = "https://cdn.patricktriest.com/icons/atlas_of_thrones/"

var iconFiles = map[Category]string{
	Castle:   "castle.svg",
	City:     "city.svg",
	Town:     "village.svg",
	Ruin:     "ruin.svg",
	Landmark: "misc.svg",
}

// IconFor：按分类生成图标，尺寸固定 24x56
func IconFor(base string, c Category) Icon {
	if base == "" {
		base = DefaultIconBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return Icon{URL: base + iconFiles[c], Width: 24, Height: 56}
}
