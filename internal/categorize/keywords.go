package categorize

import "github.com/Veraticus/smsledger/internal/model"

// Group is a semantic category group that owns a keyword set.
type Group string

// Semantic groups.
const (
	GroupFoodDining     Group = "food_dining"
	GroupGroceries      Group = "groceries"
	GroupTransportation Group = "transportation"
	GroupTravel         Group = "travel"
	GroupShopping       Group = "shopping"
	GroupBills          Group = "bills_utilities"
	GroupEntertainment  Group = "entertainment"
	GroupHealth         Group = "health"
	GroupEducation      Group = "education"
	GroupHousing        Group = "housing"
	GroupIncome         Group = "income"
	GroupTransfer       Group = "transfer"
)

// nameRule maps a substring of a normalized category name to a group.
type nameRule struct {
	substring string
	group     Group
}

// nameRules is evaluated top to bottom; the first substring found at the
// start of a word of the normalized category name decides the group.
var nameRules = []nameRule{
	{"food", GroupFoodDining},
	{"dining", GroupFoodDining},
	{"restaurant", GroupFoodDining},
	{"coffee", GroupFoodDining},
	{"cafe", GroupFoodDining},
	{"grocer", GroupGroceries},
	{"supermarket", GroupGroceries},
	{"market", GroupGroceries},
	{"transport", GroupTransportation},
	{"commute", GroupTransportation},
	{"fuel", GroupTransportation},
	{"travel", GroupTravel},
	{"vacation", GroupTravel},
	{"shopping", GroupShopping},
	{"clothing", GroupShopping},
	{"bill", GroupBills},
	{"utilit", GroupBills},
	{"phone", GroupBills},
	{"entertain", GroupEntertainment},
	{"leisure", GroupEntertainment},
	{"health", GroupHealth},
	{"medical", GroupHealth},
	{"fitness", GroupHealth},
	{"education", GroupEducation},
	{"learning", GroupEducation},
	{"housing", GroupHousing},
	{"rent", GroupHousing},
	{"salary", GroupIncome},
	{"income", GroupIncome},
	{"transfer", GroupTransfer},
}

// keywordTable holds the lower-cased matching tokens of every group.
// Sets are curated to be largely disjoint.
var keywordTable = map[Group][]string{
	GroupFoodDining: {
		"starbucks", "highlands", "phuc long", "the coffee house", "coffee", "cafe",
		"restaurant", "nha hang", "pho ", "bun ", "kfc", "mcdonald", "lotteria",
		"jollibee", "pizza", "bakery", "tra sua", "grabfood", "shopeefood", "baemin",
	},
	GroupGroceries: {
		"winmart", "vinmart", "coopmart", "co.op", "bach hoa xanh", "big c",
		"lotte mart", "aeon", "emart", "circle k", "familymart", "ministop", "grocery",
	},
	GroupTransportation: {
		"grabcar", "grabbike", "grab*trip", "be group", "xanh sm", "uber", "taxi",
		"petrolimex", "xang dau", "parking", "gui xe", "vetc", "epass",
	},
	GroupTravel: {
		"vietjet", "vietnam airlines", "bamboo airways", "agoda", "booking.com",
		"traveloka", "airbnb", "hotel", "resort",
	},
	GroupShopping: {
		"shopee", "lazada", "tiki", "uniqlo", "zara", "h&m", "amazon", "vincom",
		"the gioi di dong", "dien may xanh", "fpt shop",
	},
	GroupBills: {
		"evn", "tien dien", "tien nuoc", "internet", "fpt telecom", "viettel",
		"vnpt", "mobifone", "vinaphone", "electric", "water bill",
	},
	GroupEntertainment: {
		"cgv", "lotte cinema", "galaxy cinema", "netflix", "spotify", "youtube premium",
		"karaoke", "steam", "playstation",
	},
	GroupHealth: {
		"pharmacity", "long chau", "an khang", "nha thuoc", "pharmacy", "benh vien",
		"hospital", "clinic", "phong kham", "gym", "california fitness",
	},
	GroupEducation: {
		"hoc phi", "tuition", "school", "university", "udemy", "coursera",
	},
	GroupHousing: {
		"tien nha", "tien phong", "rent payment", "apartment", "chung cu",
	},
	GroupIncome: {
		"luong thang", "tien luong", "salary", "payroll", "bonus", "hoan tien", "refund",
	},
	GroupTransfer: {
		"chuyen tien", "chuyen khoan", "ck den", "ck tu", "transfer",
	},
}

// DefaultCategories returns the category set new ledgers are seeded with,
// in suggestion priority order.
func DefaultCategories() []model.Category {
	names := []string{
		"Food & Dining",
		"Groceries",
		"Transportation",
		"Travel",
		"Shopping",
		"Bills & Utilities",
		"Entertainment",
		"Health & Fitness",
		"Education",
		"Housing",
		"Salary & Income",
		"Transfers",
	}

	cats := make([]model.Category, len(names))
	for i, name := range names {
		cats[i] = model.Category{
			ID:       i + 1,
			Name:     name,
			Position: i,
			IsActive: true,
		}
	}
	return cats
}
