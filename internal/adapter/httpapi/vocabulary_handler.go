package httpapi

import (
	"net/http"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

type wordRequest struct {
	Text       string  `json:"text"`
	Phonetic   string  `json:"phonetic"`
	AudioURL   string  `json:"audio_url"`
	Definition string  `json:"definition"`
	Example    string  `json:"example"`
	Difficulty float64 `json:"difficulty"`
}

func (req wordRequest) toEntity() *entity.Word {
	return &entity.Word{
		Text:       req.Text,
		Phonetic:   req.Phonetic,
		AudioURL:   req.AudioURL,
		Definition: req.Definition,
		Example:    req.Example,
		Difficulty: req.Difficulty,
	}
}

func (h *Handler) createWord(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	word, err := h.vocabulary.CreateWord(r.Context(), req.toEntity())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWordDTO(*word))
}

func (h *Handler) listWords(w http.ResponseWriter, r *http.Request) {
	query := &repository.ListWordQuery{
		Pagination: pagination(r),
		FilterOrder: repository.FilterOrder{
			Filter:  r.URL.Query().Get("filter"),
			OrderBy: r.URL.Query().Get("order_by"),
		},
	}
	words, total, err := h.vocabulary.ListWords(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toWordDTOs(words), total)
}

func (h *Handler) getWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	word, err := h.vocabulary.GetWord(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWordDTO(*word))
}

func (h *Handler) updateWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req wordRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	word := req.toEntity()
	word.ID = id
	updated, err := h.vocabulary.UpdateWord(r.Context(), word)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWordDTO(*updated))
}

func (h *Handler) deleteWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.vocabulary.DeleteWord(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type bookRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Level       string   `json:"level"`
	Tags        []string `json:"tags"`
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	book, err := h.vocabulary.CreateBook(r.Context(), &entity.VocabularyBook{
		UserID:      userID(r.Context()),
		Name:        req.Name,
		Description: req.Description,
		Level:       entity.BookLevel(req.Level),
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookDTO(*book))
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	query := &repository.ListBookQuery{
		Pagination: pagination(r),
		UserID:     userID(r.Context()),
		Level:      entity.BookLevel(r.URL.Query().Get("level")),
	}
	books, total, err := h.vocabulary.ListBooks(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]bookDTO, 0, len(books))
	for _, b := range books {
		items = append(items, toBookDTO(b))
	}
	writeList(w, items, total)
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	book, err := h.vocabulary.GetBook(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(*book))
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req bookRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	book, err := h.vocabulary.UpdateBook(r.Context(), userID(r.Context()), &entity.VocabularyBook{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Level:       entity.BookLevel(req.Level),
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(*book))
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.vocabulary.DeleteBook(r.Context(), userID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// addBookWordsRequest accepts either a batch of existing word ids or a single
// inline word, which is created (or reused by text) before being appended.
type addBookWordsRequest struct {
	WordIDs []int64 `json:"word_ids"`
	wordRequest
}

func (h *Handler) addBookWords(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req addBookWordsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ids := req.WordIDs
	if len(ids) == 0 {
		if req.Text == "" {
			writeError(w, entity.ErrInvalidArgument)
			return
		}
		word, err := h.vocabulary.CreateWord(r.Context(), req.toEntity())
		if err != nil {
			writeError(w, err)
			return
		}
		ids = []int64{word.ID}
	}
	added, err := h.vocabulary.AddWordsToBook(r.Context(), userID(r.Context()), bookID, ids)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (h *Handler) listBookWords(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	words, total, err := h.vocabulary.ListBookWords(r.Context(), userID(r.Context()), bookID, pagination(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toWordDTOs(words), total)
}

func (h *Handler) removeBookWord(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	wordID, err := pathID(r, "wordID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.vocabulary.RemoveWordFromBook(r.Context(), userID(r.Context()), bookID, wordID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) reorderBookWord(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	wordID, err := pathID(r, "wordID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Position int `json:"position"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.vocabulary.ReorderWord(r.Context(), userID(r.Context()), bookID, wordID, req.Position); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
