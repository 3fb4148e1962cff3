package mockapi

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/auth"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/feed"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/media"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/user"
)

var usernameChars = regexp.MustCompile(`[^a-zA-Z0-9_.]`)

// obtainToken handles username/password login
func (s *Server) obtainToken(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if errs := common.DecodeAndValidate(r, &req); errs != nil {
		ValidationError(w, errs)
		return
	}

	key, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		NonFieldError(w, "Unable to log in with provided credentials.")
		return
	}
	OK(w, auth.TokenResponse{Key: key})
}

// register handles account creation
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if errs := common.DecodeAndValidate(r, &req); errs != nil {
		ValidationError(w, errs)
		return
	}

	p, err := s.store.CreateUser(req.Username, common.SanitizeEmail(req.Email), req.Password)
	if errors.Is(err, ErrUsernameExists) {
		ValidationError(w, map[string]string{"username": "A user with that username already exists."})
		return
	}
	if errors.Is(err, ErrEmailExists) {
		ValidationError(w, map[string]string{"email": "A user with that email already exists."})
		return
	}
	if err != nil {
		InternalError(w, fmt.Sprintf("Failed to create account: %v", err))
		return
	}
	if req.FirstName != "" || req.LastName != "" {
		name := strings.TrimSpace(req.FirstName + " " + req.LastName)
		s.store.UpdateProfile(p.ID, ProfileUpdate{DisplayName: &name})
	}

	key, err := s.store.IssueToken(p.ID)
	if err != nil {
		InternalError(w, err.Error())
		return
	}
	Created(w, auth.RegisterResponse{ID: p.ID, Username: p.Username, Email: p.Email, Key: key})
}

// googleLogin trusts the id token's claims; the mock never talks to Google
func (s *Server) googleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.GoogleLoginRequest
	if errs := common.DecodeAndValidate(r, &req); errs != nil {
		ValidationError(w, errs)
		return
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(req.IDToken, claims); err != nil {
		BadRequest(w, "Invalid Google token.")
		return
	}
	if exp, err := claims.GetExpirationTime(); err != nil || (exp != nil && !s.now().Before(exp.Time)) {
		BadRequest(w, "Google token has expired.")
		return
	}
	email, _ := claims["email"].(string)
	if !common.ValidateEmail(email) {
		BadRequest(w, "Google token carries no email.")
		return
	}

	p, err := s.store.UserByEmail(email)
	if errors.Is(err, ErrUserNotFound) {
		p, err = s.createGoogleUser(email)
	}
	if err != nil {
		InternalError(w, err.Error())
		return
	}

	key, err := s.store.IssueToken(p.ID)
	if err != nil {
		InternalError(w, err.Error())
		return
	}
	OK(w, auth.TokenResponse{Key: key})
}

func (s *Server) createGoogleUser(email string) (*user.Profile, error) {
	base := usernameChars.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if len(base) < 3 {
		base = "user"
	}
	if len(base) > 24 {
		base = base[:24]
	}
	username := base
	for i := 1; ; i++ {
		p, err := s.store.CreateUser(username, email, uuid.NewString())
		if !errors.Is(err, ErrUsernameExists) {
			return p, err
		}
		username = fmt.Sprintf("%s%d", base, i)
	}
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Profile(UserID(r.Context()))
	if err != nil {
		NotFound(w, "Not found.")
		return
	}
	OK(w, renderProfile(r, p))
}

func renderProfile(r *http.Request, p *user.Profile) *user.Profile {
	p.ProfileImage = absolute(r, p.ProfileImage)
	p.CoverImage = absolute(r, p.CoverImage)
	return p
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		BadRequest(w, "Invalid multipart form.")
		return
	}

	var req user.UpdateProfileRequest
	if v, ok := formValue(r, "display_name"); ok {
		req.DisplayName = &v
	}
	if v, ok := formValue(r, "bio"); ok {
		req.Bio = &v
	}
	if errs := common.ValidateStruct(&req); errs != nil {
		ValidationError(w, errs)
		return
	}

	update := ProfileUpdate{DisplayName: req.DisplayName, Bio: req.Bio}
	var err error
	if update.ProfileImage, err = s.saveUpload(r, "profile_image", "profile"); err != nil {
		BadRequest(w, err.Error())
		return
	}
	if update.CoverImage, err = s.saveUpload(r, "cover_image", "profile"); err != nil {
		BadRequest(w, err.Error())
		return
	}

	p, err := s.store.UpdateProfile(UserID(r.Context()), update)
	if err != nil {
		NotFound(w, "Not found.")
		return
	}
	OK(w, renderProfile(r, p))
}

func formValue(r *http.Request, name string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vs, ok := r.MultipartForm.Value[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// saveUpload stores the first file under field and returns its media path
func (s *Server) saveUpload(r *http.Request, field, dir string) (*string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	p, _, err := s.storeFile(r.MultipartForm.File[field][0], dir)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Server) storeFile(hdr *multipart.FileHeader, dir string) (string, media.Type, error) {
	f, err := hdr.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", "", fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := hdr.Header.Get("Content-Type")
	typ := media.TypeImage
	if media.IsVideo(hdr.Filename) || strings.HasPrefix(contentType, "video/") {
		typ = media.TypeVideo
	}
	if contentType == "" || contentType == "application/octet-stream" {
		if d, err := media.Normalize(hdr.Filename); err == nil {
			contentType = d.MimeType
		}
	}
	return s.store.PutMedia(dir, path.Ext(hdr.Filename), contentType, data), typ, nil
}

func (s *Server) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Deactivate(UserID(r.Context())); err != nil {
		NotFound(w, "Not found.")
		return
	}
	Message(w, "Account deactivated.")
}

func (s *Server) requestDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RequestDelete(UserID(r.Context())); err != nil {
		NotFound(w, "Not found.")
		return
	}
	Message(w, "Account deletion requested.")
}

func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	s.writePosts(w, r, s.store.Feed(UserID(r.Context())))
}

func (s *Server) reposts(w http.ResponseWriter, r *http.Request) {
	thread, _ := strconv.ParseInt(mux.Vars(r)["thread"], 10, 64)
	onlyReposts := r.URL.Query().Get("is_repost") == "true"
	s.writePosts(w, r, s.store.Thread(UserID(r.Context()), thread, onlyReposts))
}

func (s *Server) writePosts(w http.ResponseWriter, r *http.Request, posts []feed.Post) {
	page, err := paginate(r, posts, s.pageSize)
	if err != nil {
		NotFound(w, "Invalid page.")
		return
	}
	for i := range page.Results {
		renderPost(r, &page.Results[i])
	}
	OK(w, page)
}

func renderPost(r *http.Request, p *feed.Post) {
	p.User.ProfileImage = absolute(r, p.User.ProfileImage)
	for i := range p.Images {
		p.Images[i].File = *absolute(r, &p.Images[i].File)
		p.Images[i].Thumbnail = absolute(r, p.Images[i].Thumbnail)
	}
}

func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	liked, total, err := s.store.ToggleLike(UserID(r.Context()), id)
	if err != nil {
		NotFound(w, "Not found.")
		return
	}
	OK(w, map[string]interface{}{"is_liked": liked, "total_likes": total})
}

func (s *Server) createRepost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		BadRequest(w, "Invalid multipart form.")
		return
	}

	thread, _ := strconv.ParseInt(r.FormValue("thread"), 10, 64)
	req := feed.CreateRepostRequest{Thread: thread, Content: common.SanitizeString(r.FormValue("content"))}
	if errs := common.ValidateStruct(&req); errs != nil {
		ValidationError(w, errs)
		return
	}

	var images []feed.PostImage
	for _, hdr := range r.MultipartForm.File["images"] {
		p, typ, err := s.storeFile(hdr, "posts")
		if err != nil {
			BadRequest(w, err.Error())
			return
		}
		images = append(images, feed.PostImage{File: p, FileType: feed.FileType(typ)})
	}

	post, err := s.store.CreatePost(UserID(r.Context()), NewPost{Content: req.Content, Images: images, RepostOf: thread})
	if errors.Is(err, ErrPostNotFound) {
		ValidationError(w, map[string]string{"thread": "Invalid thread."})
		return
	}
	if err != nil {
		InternalError(w, err.Error())
		return
	}
	renderPost(r, post)
	Created(w, post)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	err := s.store.DeletePost(UserID(r.Context()), id)
	switch {
	case errors.Is(err, ErrPostNotFound):
		NotFound(w, "Not found.")
	case errors.Is(err, ErrForbidden):
		Forbidden(w, "You do not have permission to perform this action.")
	case err != nil:
		InternalError(w, err.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	items := s.store.Notifications(UserID(r.Context()))
	page, err := paginate(r, items, s.pageSize)
	if err != nil {
		NotFound(w, "Invalid page.")
		return
	}
	for i := range page.Results {
		if a := page.Results[i].Actor; a != nil {
			a.ProfileImage = absolute(r, a.ProfileImage)
		}
	}
	OK(w, page)
}

// mediaRedirect sends authenticated clients on to a signed storage URL
func (s *Server) mediaRedirect(w http.ResponseWriter, r *http.Request) {
	p := mux.Vars(r)["path"]
	if _, err := s.store.Media(p); err != nil {
		NotFound(w, "Not found.")
		return
	}
	sig, err := s.signMedia(p)
	if err != nil {
		InternalError(w, err.Error())
		return
	}
	target := baseURL(r) + "/storage/" + p + "?" + url.Values{"signature": {sig}}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) storage(w http.ResponseWriter, r *http.Request) {
	p := mux.Vars(r)["path"]
	if err := s.verifyMedia(p, r.URL.Query().Get("signature")); err != nil {
		if s.logRequests {
			log.Printf("mockapi: rejected storage request for %s: %v", p, err)
		}
		Forbidden(w, "Signature is invalid or has expired.")
		return
	}
	obj, err := s.store.Media(p)
	if err != nil {
		NotFound(w, "Not found.")
		return
	}
	w.Header().Set("Content-Type", obj.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(obj.data)
	}
}
