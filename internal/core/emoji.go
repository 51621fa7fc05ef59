package core

import "regexp"

const fallbackEmoji = "💰"

type emojiRule struct {
	match *regexp.Regexp
	emoji string
}

func rule(pattern, emoji string) emojiRule {
	return emojiRule{match: regexp.MustCompile(`(?i)\b(` + pattern + `)\b`), emoji: emoji}
}

// Rules are checked in order; the first match wins.
var emojiRules = []emojiRule{
	// views and broad buckets
	rule(`home|house|rent|mortgage|flat|apartment`, "🏠"),
	rule(`personal|me|self`, "👤"),
	rule(`work|office|business|professional|corporate`, "💼"),
	rule(`construction|labor|cement|brick|builder|contractor|renovation|repair`, "🏗️"),
	rule(`investment|invest|stocks|shares|mutual.?fund|sip|portfolio|trading`, "📈"),
	rule(`saving|savings|emergency.?fund|piggy`, "🏦"),
	rule(`insurance|policy|premium|cover`, "🛡️"),
	rule(`loan|emi|debt|credit.?card|borrow`, "💳"),
	rule(`tax|income.?tax|gst|tds|itr`, "📋"),

	// food and drink
	rule(`grocery|groceries|vegetable|vegg?ies|supermarket|ration|sabzi`, "🛒"),
	rule(`milk|dairy|curd|yogurt|paneer|butter|cheese`, "🥛"),
	rule(`fruit|fruits|apple|banana|mango|orange`, "🍎"),
	rule(`bakery|bread|cake|pastry|biscuit|cookie|dessert|sweet|mithai`, "🍰"),
	rule(`coffee|cafe|latte|cappuccino|espresso|tea|chai`, "☕"),
	rule(`eating.?out|restaurant|dining|dine|food|snack|lunch|dinner|breakfast|biryani|pizza|burger|zomato|swiggy`, "🍽️"),
	rule(`alcohol|beer|wine|whisky|liquor|drinks|bar|pub`, "🍺"),
	rule(`water|mineral.?water|packaged.?water`, "💧"),

	// transport
	rule(`petrol|diesel|fuel|gas.?station|filling`, "⛽"),
	rule(`uber|ola|cab|taxi|auto|rickshaw|rapido`, "🚖"),
	rule(`bus|metro|local.?train|public.?transport|commute|pass`, "🚌"),
	rule(`flight|air.?ticket|airline|airport|fly|aviation`, "✈️"),
	rule(`train|rail|irctc|railway`, "🚆"),
	rule(`car|vehicle|bike|motorcycle|scooter|ev|electric.?vehicle`, "🚗"),
	rule(`parking|toll`, "🅿️"),
	rule(`travel|trip|tour|holiday|vacation|hotel|stay|airbnb|hostel`, "🧳"),

	// health
	rule(`pharmacy|medicine|medic(al|ine|s)|tablet|capsule|drug`, "💊"),
	rule(`doctor|physician|consult(ation)?|clinic|opp?d|appointment`, "🩺"),
	rule(`hospital|surgery|operation|admission|icu`, "🏥"),
	rule(`gym|fitness|workout|exercise|yoga|zumba|crossfit`, "🏋️"),
	rule(`health|wellness|nutrition|supplement|protein|vitamin`, "❤️"),
	rule(`salon|haircut|spa|massage|beauty|parlour|grooming|waxing|facial`, "💇"),

	// shopping and lifestyle
	rule(`clothes|clothing|cloth|shirt|trouser|jeans|dress|apparel|fashion|wear|saree|kurta`, "👗"),
	rule(`shoes|footwear|sneakers|sandals|boots|slippers|heels|chappal`, "👟"),
	rule(`accessories|watch|jewel|ring|necklace|bag|handbag|wallet|sunglasses`, "💍"),
	rule(`shopping|mall|amazon|flipkart|myntra|meesho|online.?shopping|e-comm`, "🛍️"),
	rule(`furniture|sofa|bed|chair|table|wardrobe|almirah|shelf|rack`, "🛋️"),
	rule(`appliance|fridge|washing.?machine|microwave|oven|ac|air.?conditioner|tv|television`, "📺"),
	rule(`gadget|phone|mobile|laptop|ipad|iphone|android|earphone|headphone|charger|cable`, "📱"),
	rule(`cleaning|detergent|soap|shampoo|toiletries|toilet|household|broom|mop|floor`, "🧹"),

	// utilities
	rule(`electric|electricity|power|bill|MSEB|BESCOM|TNEB`, "⚡"),
	rule(`internet|wifi|broadband|data|recharge|DTH`, "🌐"),
	rule(`gas|LPG|cylinder|PNG|piped.?gas`, "🔥"),
	rule(`utilit(y|ies)|phone.?bill|mobile.?bill|landline|postpaid|prepaid`, "🔌"),
	rule(`maid|cook|servant|domestic|helper|nanny|baby.?sitter|driver`, "🧑‍🍳"),
	rule(`garden|plant|flower|pot|nursery|soil|fertilizer`, "🌱"),

	// education and kids
	rule(`school|college|university|tuition|coaching|course|class|fee`, "🎓"),
	rule(`book|books|stationery|notebook|pen|pencil|study|textbook`, "📚"),
	rule(`kids|child|children|baby|toy|toys|diaper|formula`, "🧒"),

	// entertainment
	rule(`netflix|prime|hotstar|jiocinema|disney|hulu|streaming|ott`, "🎬"),
	rule(`spotify|music|concert|show|event|ticket`, "🎵"),
	rule(`game|gaming|playstation|xbox|steam|esports`, "🎮"),
	rule(`subscription|membership|annual|renew`, "🔄"),
	rule(`cinema|movie|film|theatre|multiplex|imax`, "🍿"),
	rule(`sport|cricket|football|badminton|tennis|swim(ming)?|cycling`, "🏃"),

	// social
	rule(`gift|gifting|present|birthday|wedding|anniversary|occasion|celebrat`, "🎁"),
	rule(`donat(e|ion)|charity|temple|church|mosque|religious|puja|pooja|offering`, "🙏"),
	rule(`party|celebration|function|dinner.?party|host`, "🎉"),

	rule(`kitchen|cookware|utensil|vessel|pressure.?cooker|pan|kadai|tawa`, "🍳"),

	rule(`misc|miscellaneous|other|general|sundry`, "🗂️"),
}

// EmojiFor picks a display emoji for a view or category name.
func EmojiFor(name string) string {
	if name == "" {
		return fallbackEmoji
	}
	for _, r := range emojiRules {
		if r.match.MatchString(name) {
			return r.emoji
		}
	}
	return fallbackEmoji
}

// Label prefixes name with its emoji, e.g. "🛒 Grocery".
func Label(name string) string {
	return EmojiFor(name) + " " + name
}
