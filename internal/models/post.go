// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package models

// BlogPost is a WordPress blog post as exposed by the gateway. Unlike
// content items, posts belong to the caller's own WordPress account.
type BlogPost struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
	Slug       string `json:"slug,omitempty"`
	Status     string `json:"status"`
	AuthorID   int    `json:"authorId,omitempty"`
	Categories []int  `json:"categories,omitempty"`
	Tags       []int  `json:"tags,omitempty"`
	Date       string `json:"date,omitempty"`
	Modified   string `json:"modified,omitempty"`
	LikeCount  int    `json:"likeCount"`
}

// PostRequest is the body for creating or updating a blog post. Tags
// arrive by name and are resolved to IDs server-side.
type PostRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Status     string   `json:"status,omitempty" validate:"omitempty,oneof=draft pending publish private"`
	Categories []int    `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Term is a category or tag.
type Term struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Comment is a blog-post comment.
type Comment struct {
	ID       int    `json:"id"`
	PostID   int    `json:"postId"`
	Author   string `json:"author"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	Status   string `json:"status,omitempty"`
	ParentID int    `json:"parentId,omitempty"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	PostID    int  `json:"postId"`
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
