package core

import "fmt"

// Image is a loadable program: a text segment of instruction words and an
// optional data segment of preloaded words.
type Image struct {
	Entry    uint32
	TextBase uint32
	Text     []uint32
	DataBase uint32
	Data     []int32
}

// TextEnd is the first address past the text segment.
func (img Image) TextEnd() uint32 {
	return img.TextBase + uint32(4*len(img.Text))
}

func (img Image) validate() error {
	if img.TextBase%4 != 0 || img.DataBase%4 != 0 {
		return fmt.Errorf("segments must be word aligned (text 0x%08x, data 0x%08x)",
			img.TextBase, img.DataBase)
	}

	if len(img.Text) > 0 && (img.Entry < img.TextBase || img.Entry >= img.TextEnd()) {
		return fmt.Errorf("entry 0x%08x outside text segment", img.Entry)
	}

	return nil
}
