package components

import (
	"html/template"
	"io"
	"net/url"

	"postview/app/models"
)

// IndexURL is the navigation target of the back button
const IndexURL = "/"

// Endpoints are the form targets that carry the page's callbacks back to the server
type Endpoints struct {
	Navigate   string `json:"navigate"`
	Select     string `json:"select"`
	AddComment string `json:"addComment"`
}

// DefaultEndpoints returns the endpoints served under /posts
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Navigate:   "/posts/navigate",
		Select:     "/posts/select",
		AddComment: "/posts/comments",
	}
}

// CommentForm holds the comment form fields as submitted
type CommentForm struct {
	Content     string
	AuthorName  string
	AuthorEmail string
}

// CommentFormFromValues reads the comment form fields from posted values
func CommentFormFromValues(values url.Values) CommentForm {
	return CommentForm{
		Content:     values.Get("content"),
		AuthorName:  values.Get("authorName"),
		AuthorEmail: values.Get("authorEmail"),
	}
}

// Page renders the posts list, the selected post with its comments and the
// comment form. It holds no state: everything comes from its fields.
type Page struct {
	Posts          []models.Post
	SelectedPostID string

	Navigate   func(url string)
	Select     func(id string)
	AddComment func(args models.AddCommentArgs)

	Endpoints Endpoints
}

// NavItem is one entry of the side navigation
type NavItem struct {
	ID     string
	Value  string
	Active bool
}

// SideNav is the view model of the titles list
type SideNav struct {
	Action string
	Items  []NavItem
}

// BasicButton is a single-field form rendered as a button
type BasicButton struct {
	Class  string
	Action string
	Field  string
	Value  string
	Text   string
}

// SelectedPost returns the selected post or the empty placeholder
func (p *Page) SelectedPost() models.Post {
	return models.FindPost(p.Posts, p.SelectedPostID)
}

// ShowCommentForm reports whether the comment form is rendered
func (p *Page) ShowCommentForm() bool {
	return p.SelectedPostID != ""
}

// SideNav lists the post titles in input order
func (p *Page) SideNav() SideNav {
	items := make([]NavItem, 0, len(p.Posts))
	for _, post := range p.Posts {
		items = append(items, NavItem{
			ID:     post.ID,
			Value:  post.Title,
			Active: post.ID == p.SelectedPostID && p.SelectedPostID != "",
		})
	}
	return SideNav{Action: p.endpoints().Select, Items: items}
}

// BackButton is the "Back to Index" control
func (p *Page) BackButton() BasicButton {
	return BasicButton{
		Class:  "navButton",
		Action: p.endpoints().Navigate,
		Field:  "url",
		Value:  IndexURL,
		Text:   "Back to Index",
	}
}

// CommentAction is the comment form target
func (p *Page) CommentAction() string {
	return p.endpoints().AddComment
}

// ScopeClass is the class of the root element
func (p *Page) ScopeClass() string {
	return ScopeClass
}

// Style is the scoped stylesheet
func (p *Page) Style() template.CSS {
	return scopedStyle
}

// GoBack invokes Navigate with the index URL
func (p *Page) GoBack() {
	if p.Navigate != nil {
		p.Navigate(IndexURL)
	}
}

// SelectPost invokes Select with id
func (p *Page) SelectPost(id string) {
	if p.Select != nil {
		p.Select(id)
	}
}

// SubmitComment invokes AddComment once with the selected post and the form
// values, unvalidated. It reports false, without calling anything, when no
// post is selected because the form is not rendered then.
func (p *Page) SubmitComment(form CommentForm) bool {
	if !p.ShowCommentForm() {
		return false
	}
	if p.AddComment != nil {
		p.AddComment(models.AddCommentArgs{
			PostID:      p.SelectedPostID,
			Content:     form.Content,
			AuthorName:  form.AuthorName,
			AuthorEmail: form.AuthorEmail,
		})
	}
	return true
}

// Render writes the page fragment
func (p *Page) Render(w io.Writer) error {
	return templates["page"].ExecuteTemplate(w, "page", p)
}

// RenderDocument writes the page wrapped in the HTML layout
func (p *Page) RenderDocument(w io.Writer) error {
	return templates["page"].ExecuteTemplate(w, "layout", p)
}

// RenderIndex writes the index document linking to postsURL
func RenderIndex(w io.Writer, postsURL string) error {
	data := struct {
		PostsURL string
	}{
		PostsURL: postsURL,
	}
	return templates["index"].ExecuteTemplate(w, "layout", data)
}

func (p *Page) endpoints() Endpoints {
	if p.Endpoints == (Endpoints{}) {
		return DefaultEndpoints()
	}
	return p.Endpoints
}
