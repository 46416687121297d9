package models

// Room описывает переговорную комнату. Справочные данные из конфигурации,
// не изменяются во время работы.
type Room struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Location string   `json:"location" yaml:"location"`
	Capacity int      `json:"capacity" yaml:"capacity"`
	Features []string `json:"features" yaml:"features"`
	Image    string   `json:"image" yaml:"image"`
}
