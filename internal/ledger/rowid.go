package ledger

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
)

const tempPrefix = "tmp_"

var digitsOnly = regexp.MustCompile(`^\d+$`)

// RowID адресует строку профиль-навык. Пространства идентификаторов не
// пересекаются: либо временный токен несохранённой строки, либо числовой
// суррогат бэкенда. Временный токен никогда не уходит в бэкенд.
type RowID struct {
	temp string
	id   int
}

// NewTempID выдаёт свежий временный идентификатор, уникальный в рамках сессии.
func NewTempID() RowID {
	return RowID{temp: tempPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]}
}

// PersistedID оборачивает числовой суррогат сохранённой строки.
func PersistedID(id int) RowID {
	return RowID{id: id}
}

// ParseRowID разбирает идентификатор из запроса клиента:
// "tmp_xxxxxxxx" — временный, строка из цифр — сохранённый.
func ParseRowID(s string) (RowID, error) {
	if strings.HasPrefix(s, tempPrefix) && len(s) > len(tempPrefix) {
		return RowID{temp: s}, nil
	}
	if digitsOnly.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return RowID{}, apperror.ErrInvalidIdentifier
		}
		return RowID{id: n}, nil
	}
	return RowID{}, apperror.ErrInvalidIdentifier
}

// IsTemp сообщает, что идентификатор временный.
func (r RowID) IsTemp() bool {
	return r.temp != ""
}

// IsZero сообщает, что идентификатор пустой.
func (r RowID) IsZero() bool {
	return r.temp == "" && r.id == 0
}

// Persisted возвращает числовой суррогат; 0 для временных идентификаторов.
func (r RowID) Persisted() int {
	return r.id
}

func (r RowID) String() string {
	if r.temp != "" {
		return r.temp
	}
	return strconv.Itoa(r.id)
}
