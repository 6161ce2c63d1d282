package domain

// Правило сортировки списка
type OrderRule int

const (
	OrderCreatedDesc OrderRule = iota // новые сверху
	OrderExplicitAsc                  // по полю order, тай-брейк по created_at
)

// Кардинальность медиа-вложений ресурса
type MediaCardinality int

const (
	MediaNone MediaCardinality = iota
	MediaSingle
	MediaMulti
)

// Descriptor — всё, чем один ресурс отличается от другого.
// Семь экземпляров ниже; остальная логика общая (internal/resource).
type Descriptor struct {
	Collection  string   // slug коллекции и префикс ключей кеша
	Name        string   // единственное число для текстов ошибок
	Plural      string   // множественное число для текстов ошибок
	Required    []string // обязательные поля payload при создании
	RequiredMsg string   // текст 400 при нехватке обязательных полей
	Defaults    Payload  // значения по умолчанию при создании
	Order       OrderRule
	Media       MediaCardinality
	FileField   string // имя multipart-поля с файлами
	MediaField  string // поле payload, куда зеркалятся URL ассетов
	NameField   string // поле payload с исходным именем файла (сертификаты)
	Filters     []string
	// Массивы под-сущностей: их элементам при сохранении выдаются id,
	// если клиент прислал элемент без id
	SubFields []string
	// Ключ кеша списка; nil — всегда "<collection>:all"
	ListKey func(f ListFilter) string

	// Производные значения при создании (после валидации и
	// зеркалирования медиа, до подстановки Defaults). nil — ничего не делать.
	DeriveOnCreate func(p Payload)
}

// ListFilter — нормализованный фильтр списка (query-параметры из белого списка)
type ListFilter map[string]string

// ListCacheKey — детерминированный ключ кеша для выборки списка
func (d Descriptor) ListCacheKey(f ListFilter) string {
	if d.ListKey != nil {
		return d.ListKey(f)
	}
	return d.Collection + ":all"
}

// CachePattern — шаблон инвалидации всех производных ключей ресурса
func (d Descriptor) CachePattern() string { return d.Collection + ":*" }

var Certificates = Descriptor{
	Collection:  "certificates",
	Name:        "certificate",
	Plural:      "certificates",
	Required:    []string{"label", "type", "base"},
	RequiredMsg: "Label, type, and base are required",
	Order:       OrderCreatedDesc,
	Media:       MediaSingle,
	FileField:   "file",
	NameField:   "file",
	DeriveOnCreate: func(p Payload) {
		if _, ok := p["file"]; !ok {
			if base, ok := p["base"].(string); ok {
				p["file"] = base + ".pdf"
			}
		}
	},
}

var Images = Descriptor{
	Collection:  "images",
	Name:        "image",
	Plural:      "images",
	Required:    []string{"src", "title", "description", "station"},
	RequiredMsg: "Src, title, description, and station are required",
	Order:       OrderCreatedDesc,
	Media:       MediaSingle,
	FileField:   "image",
	MediaField:  "src",
	Filters:     []string{"station"},
	ListKey: func(f ListFilter) string {
		if s := f["station"]; s != "" {
			return "images:station:" + s
		}
		return "images:all"
	},
}

var Journey = Descriptor{
	Collection:  "journey",
	Name:        "journey step",
	Plural:      "journey steps",
	Required:    []string{"year", "title", "description", "icon", "color"},
	RequiredMsg: "Year, title, description, icon, and color are required",
	Defaults:    Payload{"order": 0},
	Order:       OrderExplicitAsc,
}

var LandingPages = Descriptor{
	Collection:  "landing-pages",
	Name:        "landing page",
	Plural:      "landing pages",
	Required:    []string{"title", "description"},
	RequiredMsg: "Title and description are required",
	Defaults:    Payload{"featured": false},
	Order:       OrderCreatedDesc,
	Media:       MediaSingle,
	FileField:   "image",
	MediaField:  "image",
	Filters:     []string{"featured"},
	ListKey: func(f ListFilter) string {
		// ключ на каждое значение фильтра: выборки featured=true и
		// featured=false не должны делить кеш
		if v := f["featured"]; v != "" {
			return "landing-pages:featured:" + v
		}
		return "landing-pages:all"
	},
}

var Linkedin = Descriptor{
	Collection: "linkedin",
	Name:       "LinkedIn profile",
	Plural:     "LinkedIn profiles",
	Order:      OrderCreatedDesc,
	SubFields:  []string{"experience", "education", "skills", "certifications"},
}

var OdooModules = Descriptor{
	Collection:  "odoo",
	Name:        "Odoo module",
	Plural:      "Odoo modules",
	Required:    []string{"name", "category", "version", "description", "status"},
	RequiredMsg: "Name, category, version, description, and status are required",
	Defaults:    Payload{"clientsUsing": 0, "screenshots": []any{"/api/placeholder/800/500"}},
	Order:       OrderCreatedDesc,
	Media:       MediaMulti,
	FileField:   "screenshots",
	MediaField:  "screenshots",
	Filters:     []string{"category", "status"},
	ListKey: func(f ListFilter) string {
		key := "odoo:all"
		if c := f["category"]; c != "" {
			key += ":category:" + c
		}
		if s := f["status"]; s != "" {
			key += ":status:" + s
		}
		return key
	},
}

var PersonalProjects = Descriptor{
	Collection:  "personal-info",
	Name:        "personal project",
	Plural:      "personal projects",
	Required:    []string{"title", "description", "status"},
	RequiredMsg: "Title, description, and status are required",
	Defaults:    Payload{"featured": false},
	Order:       OrderCreatedDesc,
	Media:       MediaMulti,
	FileField:   "images",
	MediaField:  "images",
	Filters:     []string{"featured", "status"},
	ListKey: func(f ListFilter) string {
		key := "personal-info:all"
		if v := f["featured"]; v != "" {
			key += ":featured:" + v
		}
		if s := f["status"]; s != "" {
			key += ":status:" + s
		}
		return key
	},
}

// Resources — все коллекции (для маршрутизации и тестов)
var Resources = []Descriptor{
	Certificates, Images, Journey, LandingPages, Linkedin, OdooModules, PersonalProjects,
}
