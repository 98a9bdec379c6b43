// Package textutil provides filename and token sanitization for safe
// filesystem use. Names are NFC-normalized before unsafe characters are
// replaced so equivalent Unicode spellings collapse to one file name.
package textutil
