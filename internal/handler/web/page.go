package web

// Page - раздел интерфейса
type Page string

const (
	PageHome    Page = "home"
	PageAlerts  Page = "alerts"
	PageChatbot Page = "chatbot"
)

// Pages - порядок разделов в навигации
var Pages = []Page{PageHome, PageAlerts, PageChatbot}

// ParsePage разбирает параметр запроса; неизвестное значение означает главную страницу
func ParsePage(raw string) Page {
	for _, p := range Pages {
		if string(p) == raw {
			return p
		}
	}
	return PageHome
}

// Label - подпись пункта навигации
func (p Page) Label() string {
	switch p {
	case PageAlerts:
		return "Alerts"
	case PageChatbot:
		return "Chatbot"
	default:
		return "Dashboard"
	}
}

// Path - адрес раздела
func (p Page) Path() string {
	return "/?page=" + string(p)
}

// Shell - состояние навигации для одного запроса
type Shell struct {
	Current Page
	Pages   []Page
}

// NewShell строит оболочку с выбранным разделом
func NewShell(current Page) Shell {
	return Shell{Current: current, Pages: Pages}
}

// IsCurrent сообщает, выбран ли раздел
func (s Shell) IsCurrent(p Page) bool {
	return s.Current == p
}
