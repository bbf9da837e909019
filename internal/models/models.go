package models

// User — пользователь users-permissions в бэкенде контента.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Skill — запись каталога навыков (только чтение).
type Skill struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	IconURL string `json:"iconUrl"`
}

// ProfileSkillRow — связка профиль ↔ навык с уровнем владения.
// DocumentID — адресуемый ключ бэкенда (Strapi v5), ID — числовой суррогат.
type ProfileSkillRow struct {
	ID         int    `json:"id"`
	DocumentID string `json:"documentId,omitempty"`
	Level      int    `json:"level"`
	Skill      Skill  `json:"skill"`
}

// Profile — профиль разработчика. Типизированы только поля, нужные серверу;
// полный нормализованный ответ бэкенда лежит в Raw и отдаётся фронту как есть.
type Profile struct {
	ID           int
	DocumentID   string
	Slug         string
	YourName     string
	ContactEmail string
	Raw          map[string]any
}

// AuthResult — результат логина/регистрации в бэкенде.
type AuthResult struct {
	JWT  string
	User User
}
